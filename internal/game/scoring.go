package game

const MinorityBonus = 10

type Tally struct {
	Yes int
	No  int
}

func CountAnswers(answers []Answer) Tally {
	var tally Tally
	for _, answer := range answers {
		if answer.Value {
			tally.Yes++
		} else {
			tally.No++
		}
	}
	return tally
}

// IsMinority compares against n/2 without leaving integer arithmetic:
// yes < n/2 is 2*yes < n. A tie makes neither side the minority.
func IsMinority(value bool, yes, playerCount int) bool {
	if value {
		return 2*yes < playerCount
	}
	return 2*yes > playerCount
}

// Score returns the point delta for every answerer of a completed round.
// It is pure and independent of answer order.
func Score(answers []Answer, playerCount int) map[string]int {
	deltas := make(map[string]int, len(answers))
	yes := CountAnswers(answers).Yes
	for _, answer := range answers {
		if IsMinority(answer.Value, yes, playerCount) {
			deltas[answer.UserID] += MinorityBonus
		} else if _, ok := deltas[answer.UserID]; !ok {
			deltas[answer.UserID] = 0
		}
	}
	return deltas
}

func applyDeltas(room *Room, deltas map[string]int) {
	for i := range room.Players {
		room.Players[i].Points += deltas[room.Players[i].UserID]
	}
}

// Winners returns every player sharing the maximal point total, in seat order.
func Winners(room *Room) []PlayerEntry {
	if room == nil || len(room.Players) == 0 {
		return nil
	}
	best := room.Players[0].Points
	for _, player := range room.Players[1:] {
		if player.Points > best {
			best = player.Points
		}
	}
	winners := make([]PlayerEntry, 0, 1)
	for _, player := range room.Players {
		if player.Points == best {
			winners = append(winners, player)
		}
	}
	return winners
}
