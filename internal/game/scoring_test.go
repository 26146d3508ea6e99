package game

import "testing"

func answersOf(values ...bool) []Answer {
	answers := make([]Answer, 0, len(values))
	for i, value := range values {
		answers = append(answers, Answer{UserID: string(rune('a' + i)), QuestionID: "q1", Value: value, Round: 1})
	}
	return answers
}

func TestScoreMinorityRule(t *testing.T) {
	cases := []struct {
		name   string
		values []bool
		want   map[string]int
	}{
		{"single yes of three", []bool{true, false, false}, map[string]int{"a": 10, "b": 0, "c": 0}},
		{"single no of three", []bool{true, true, false}, map[string]int{"a": 0, "b": 0, "c": 10}},
		{"even split", []bool{true, true, false, false}, map[string]int{"a": 0, "b": 0, "c": 0, "d": 0}},
		{"unanimous no", []bool{false, false, false}, map[string]int{"a": 0, "b": 0, "c": 0}},
		{"unanimous yes", []bool{true, true}, map[string]int{"a": 0, "b": 0}},
		{"two yes of five", []bool{true, false, true, false, false}, map[string]int{"a": 10, "b": 0, "c": 10, "d": 0, "e": 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(answersOf(tc.values...), len(tc.values))
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d deltas, got %#v", len(tc.want), got)
			}
			for user, delta := range tc.want {
				if got[user] != delta {
					t.Fatalf("user %s: expected %d, got %d", user, delta, got[user])
				}
			}
		})
	}
}

func TestScoreSumMatchesMinorityCount(t *testing.T) {
	for n := 1; n <= 8; n++ {
		for yes := 0; yes <= n; yes++ {
			values := make([]bool, n)
			for i := 0; i < yes; i++ {
				values[i] = true
			}
			deltas := Score(answersOf(values...), n)
			sum := 0
			for _, delta := range deltas {
				sum += delta
			}
			minority := 0
			if 2*yes < n {
				minority = yes
			} else if 2*yes > n {
				minority = n - yes
			}
			if sum != MinorityBonus*minority {
				t.Fatalf("n=%d yes=%d: expected sum %d, got %d", n, yes, MinorityBonus*minority, sum)
			}
		}
	}
}

func TestScoreOrderIndependent(t *testing.T) {
	answers := answersOf(true, false, false, true, false)
	reversed := make([]Answer, len(answers))
	for i := range answers {
		reversed[len(answers)-1-i] = answers[i]
	}
	first := Score(answers, 5)
	second := Score(reversed, 5)
	for user, delta := range first {
		if second[user] != delta {
			t.Fatalf("user %s scored %d then %d", user, delta, second[user])
		}
	}
}

func TestWinnersIncludesTies(t *testing.T) {
	room := &Room{Players: []PlayerEntry{
		{UserID: "a", Points: 20},
		{UserID: "b", Points: 10},
		{UserID: "c", Points: 20},
	}}
	winners := Winners(room)
	if len(winners) != 2 || winners[0].UserID != "a" || winners[1].UserID != "c" {
		t.Fatalf("expected a and c, got %#v", winners)
	}
}
