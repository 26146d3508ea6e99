package fanout

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"never-have-i-ever/internal/game"
)

func quietHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPublishReachesRoomOnly(t *testing.T) {
	hub := quietHub()
	a := NewSession("room-1", "a", 4)
	b := NewSession("room-2", "b", 4)
	hub.Subscribe(a)
	hub.Subscribe(b)

	hub.Publish("room-1", game.PlayerAnswered{RoomID: "room-1", UserID: "a"})

	select {
	case data := <-a.Queue():
		var envelope struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if envelope.Event != game.EventPlayerAnswered {
			t.Fatalf("unexpected event %q", envelope.Event)
		}
	default:
		t.Fatalf("expected message for room-1 session")
	}
	select {
	case <-b.Queue():
		t.Fatalf("room-2 session must not receive room-1 messages")
	default:
	}
}

func TestAllPlayersAnsweredPayloadNames(t *testing.T) {
	data, err := Encode(game.AllPlayersAnswered{
		YesCount: 2,
		NoCount:  1,
		Players:  []game.PlayerEntry{{UserID: "a", Points: 10}},
		Answers:  []game.AnswerView{{UserID: "a", Answer: true}},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var decoded struct {
		Event string         `json:"event"`
		Data  map[string]any `json:"data"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"yesCount", "noCount", "players", "answers"} {
		if _, ok := decoded.Data[key]; !ok {
			t.Fatalf("missing %s in %s", key, data)
		}
	}
}

func TestFullQueueDropsSession(t *testing.T) {
	hub := quietHub()
	slow := NewSession("room-1", "slow", 1)
	hub.Subscribe(slow)

	hub.Publish("room-1", game.PlayerAnswered{UserID: "x"})
	hub.Publish("room-1", game.PlayerAnswered{UserID: "y"})

	if hub.RoomSize("room-1") != 0 {
		t.Fatalf("expected slow session dropped")
	}
	<-slow.Queue()
	if _, ok := <-slow.Queue(); ok {
		t.Fatalf("expected queue closed after drop")
	}
}

func TestPublishAllAndPrune(t *testing.T) {
	hub := quietHub()
	a := NewSession("room-1", "a", 4)
	b := NewSession("room-2", "b", 4)
	hub.Subscribe(a)
	hub.Subscribe(b)

	hub.PublishAll(game.LeaderboardUpdated{})
	if len(a.Queue()) != 1 || len(b.Queue()) != 1 {
		t.Fatalf("expected both sessions to receive global notification")
	}

	hub.Prune("room-1")
	if hub.Rooms() != 1 {
		t.Fatalf("expected one room after prune, got %d", hub.Rooms())
	}
	hub.Unsubscribe(a)
	hub.Unsubscribe(b)
	if hub.Rooms() != 0 {
		t.Fatalf("expected empty registry, got %d", hub.Rooms())
	}
}

func TestClosedSessionRemovedWithoutSlowWarning(t *testing.T) {
	var logs bytes.Buffer
	hub := NewHub(slog.New(slog.NewTextHandler(&logs, nil)))
	gone := NewSession("room-1", "gone", 4)
	slow := NewSession("room-1", "slow", 1)
	hub.Subscribe(gone)
	hub.Subscribe(slow)
	gone.Close()

	hub.Publish("room-1", game.PlayerAnswered{UserID: "x"})
	if hub.RoomSize("room-1") != 1 {
		t.Fatalf("expected closed session removed, got %d sessions", hub.RoomSize("room-1"))
	}
	if strings.Contains(logs.String(), "dropping slow session") {
		t.Fatalf("closed session must not be reported as slow: %s", logs.String())
	}

	hub.Publish("room-1", game.PlayerAnswered{UserID: "y"})
	if hub.RoomSize("room-1") != 0 {
		t.Fatalf("expected slow session dropped")
	}
	if !strings.Contains(logs.String(), "user_id=slow") {
		t.Fatalf("expected slow session warning, got %s", logs.String())
	}
}
