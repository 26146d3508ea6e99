package server

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"never-have-i-ever/internal/config"
)

func TestHealth(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	resp := doRequest(t, ts, http.MethodGet, "/api/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["status"] != "ok" {
		t.Fatalf("expected ok status, got %#v", body["status"])
	}
}

func TestCreateRoom(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	roomID := createRoom(t, ts, "host", 3)
	room := fetchRoom(t, ts, roomID)
	if room["status"] != "waiting" {
		t.Fatalf("expected waiting room, got %#v", room["status"])
	}
	if room["hostId"] != "host" {
		t.Fatalf("expected host id, got %#v", room["hostId"])
	}
	if _, ok := room["accessCode"]; ok {
		t.Fatalf("access code must not be exposed")
	}
	if points := pointsByUser(t, room); len(points) != 1 {
		t.Fatalf("expected host seated, got %v", points)
	}
}

func TestCreateRoomValidation(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	cases := []struct {
		name    string
		payload map[string]any
	}{
		{"missing name", map[string]any{"hostId": "h", "maxPlayers": 4, "maxRounds": 3}},
		{"too many players", map[string]any{"name": "r", "hostId": "h", "maxPlayers": 31, "maxRounds": 3}},
		{"too many rounds", map[string]any{"name": "r", "hostId": "h", "maxPlayers": 4, "maxRounds": 21}},
		{"bad visibility", map[string]any{"name": "r", "hostId": "h", "maxPlayers": 4, "maxRounds": 3, "visibility": "secret"}},
		{"private without code", map[string]any{"name": "r", "hostId": "h", "maxPlayers": 4, "maxRounds": 3, "visibility": "private"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doRequest(t, ts, http.MethodPost, "/api/rooms", tc.payload)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
			}
			body := decodeBody(t, resp)
			if body["code"] != "validation" {
				t.Fatalf("expected validation code, got %#v", body["code"])
			}
		})
	}
}

func TestGetRoomNotFound(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	resp := doRequest(t, ts, http.MethodGet, "/api/rooms/missing", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["error"] != "room not found" {
		t.Fatalf("unexpected error %#v", body["error"])
	}
}

func TestListRoomsHidesPrivate(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	createRoom(t, ts, "host", 3)
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms", map[string]any{
		"name":       "Secret",
		"hostId":     "other",
		"maxPlayers": 4,
		"maxRounds":  3,
		"visibility": "private",
		"accessCode": "ABCD",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	resp.Body.Close()

	resp = doRequest(t, ts, http.MethodGet, "/api/rooms?status=waiting", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	rooms := body["rooms"].([]any)
	if len(rooms) != 1 {
		t.Fatalf("expected 1 public room, got %d", len(rooms))
	}
	pagination := body["pagination"].(map[string]any)
	if pagination["total"].(float64) != 1 {
		t.Fatalf("expected total 1, got %#v", pagination["total"])
	}

	resp = doRequest(t, ts, http.MethodGet, "/api/rooms?status=finished", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
	resp.Body.Close()
}

func TestPrivateRoomRequiresAccessCode(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	resp := doRequest(t, ts, http.MethodPost, "/api/rooms", map[string]any{
		"name":       "Secret",
		"hostId":     "host",
		"maxPlayers": 4,
		"maxRounds":  3,
		"visibility": "private",
		"accessCode": "ABCD",
	})
	body := decodeBody(t, resp)
	roomID := body["id"].(string)
	if body["hasAccessCode"] != true {
		t.Fatalf("expected hasAccessCode, got %#v", body["hasAccessCode"])
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/join", map[string]any{"userId": "a", "accessCode": "WXYZ"})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, resp.StatusCode)
	}
	resp.Body.Close()

	resp = doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/join", map[string]any{"userId": "a", "accessCode": "ABCD"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	resp.Body.Close()
}

func TestStartRequiresTwoPlayers(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	roomID := createRoom(t, ts, "host", 3)
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/start", map[string]any{"userId": "host"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["code"] != "not_enough_players" {
		t.Fatalf("expected not_enough_players, got %#v", body["code"])
	}
}

func TestStartHostOnly(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	roomID := createRoom(t, ts, "host", 3)
	joinRoom(t, ts, roomID, "alice")
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/start", map[string]any{"userId": "alice"})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, resp.StatusCode)
	}
	resp.Body.Close()
}

func TestGameFlow(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	roomID := createRoom(t, ts, "host", 2)
	joinRoom(t, ts, roomID, "alice")
	joinRoom(t, ts, roomID, "bob")

	started := startRoom(t, ts, roomID, "host")
	if started["status"] != "playing" {
		t.Fatalf("expected playing, got %#v", started["status"])
	}
	if started["currentRound"].(float64) != 1 {
		t.Fatalf("expected round 1, got %#v", started["currentRound"])
	}
	if ids := started["questionIds"].([]any); len(ids) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(ids))
	}

	if body := submitAnswer(t, ts, roomID, "host", true); body["allPlayersAnswered"] != false {
		t.Fatalf("expected round still open, got %#v", body)
	}

	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/answers", map[string]any{"userId": "host", "answer": false})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected duplicate answer status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["error"] != "you have already answered this question" {
		t.Fatalf("unexpected error %#v", body["error"])
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/next-round", map[string]any{"userId": "host"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected incomplete round status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
	resp.Body.Close()

	submitAnswer(t, ts, roomID, "alice", false)
	if body := submitAnswer(t, ts, roomID, "bob", false); body["allPlayersAnswered"] != true {
		t.Fatalf("expected round complete, got %#v", body)
	}

	points := pointsByUser(t, fetchRoom(t, ts, roomID))
	if points["host"] != 10 || points["alice"] != 0 || points["bob"] != 0 {
		t.Fatalf("unexpected points after round 1: %v", points)
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/next-round", map[string]any{"userId": "alice"})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, resp.StatusCode)
	}
	resp.Body.Close()

	resp = doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/next-round", map[string]any{"userId": "host"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body = decodeBody(t, resp)
	if body["isGameOver"] != false || body["currentRound"].(float64) != 2 {
		t.Fatalf("unexpected advance result %#v", body)
	}

	submitAnswer(t, ts, roomID, "host", true)
	submitAnswer(t, ts, roomID, "alice", true)
	submitAnswer(t, ts, roomID, "bob", true)

	resp = doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/next-round", map[string]any{"userId": "host"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body = decodeBody(t, resp)
	if body["isGameOver"] != true {
		t.Fatalf("expected game over, got %#v", body)
	}
	winners := body["winners"].([]any)
	if len(winners) != 1 || winners[0].(map[string]any)["userId"] != "host" {
		t.Fatalf("expected host to win, got %#v", winners)
	}

	room := fetchRoom(t, ts, roomID)
	if room["status"] != "completed" {
		t.Fatalf("expected completed, got %#v", room["status"])
	}

	resp = doRequest(t, ts, http.MethodGet, "/api/users/host/stats", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	stats := decodeBody(t, resp)
	if stats["points"].(float64) != 10 || stats["gamesPlayed"].(float64) != 1 || stats["gamesWon"].(float64) != 1 {
		t.Fatalf("unexpected host stats %#v", stats)
	}

	resp = doRequest(t, ts, http.MethodGet, "/api/leaderboard?limit=5", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	board := decodeBody(t, resp)["leaderboard"].([]any)
	if len(board) == 0 || board[0].(map[string]any)["userId"] != "host" {
		t.Fatalf("expected host to lead, got %#v", board)
	}
}

func TestAnswerRequiresBoolean(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	roomID := createRoom(t, ts, "host", 2)
	joinRoom(t, ts, roomID, "alice")
	startRoom(t, ts, roomID, "host")

	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/answers", map[string]any{"userId": "host"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["error"] != "please provide userId and answer" {
		t.Fatalf("unexpected error %#v", body["error"])
	}

	resp = doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/answers", map[string]any{"userId": "stranger", "answer": true})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLeaveRoomClosesWhenHostIsLast(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	roomID := createRoom(t, ts, "host", 2)
	joinRoom(t, ts, roomID, "alice")

	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/leave", map[string]any{"userId": "host"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
	resp.Body.Close()

	resp = doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/leave", map[string]any{"userId": "alice"})
	if body := decodeBody(t, resp); body["closed"] != false {
		t.Fatalf("expected room to stay open, got %#v", body)
	}
	resp = doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/leave", map[string]any{"userId": "host"})
	if body := decodeBody(t, resp); body["closed"] != true {
		t.Fatalf("expected room to close, got %#v", body)
	}

	resp = doRequest(t, ts, http.MethodGet, "/api/rooms/"+roomID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
	resp.Body.Close()
}

func TestReady(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	roomID := createRoom(t, ts, "host", 2)
	joinRoom(t, ts, roomID, "alice")

	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/ready", map[string]any{"userId": "alice", "ready": true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	room := decodeBody(t, resp)
	for _, raw := range room["players"].([]any) {
		player := raw.(map[string]any)
		if player["userId"] == "alice" && player["isReady"] != true {
			t.Fatalf("expected alice ready, got %#v", player)
		}
	}
}

func TestQuestions(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	resp := doRequest(t, ts, http.MethodGet, "/api/questions?count=3", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "[") {
		t.Fatalf("expected a JSON list, got %s", buf.String())
	}
	if n := strings.Count(buf.String(), `"text"`); n != 3 {
		t.Fatalf("expected 3 questions, got %d", n)
	}

	for _, count := range []string{"0", "51", "many"} {
		resp := doRequest(t, ts, http.MethodGet, "/api/questions?count="+count, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("count=%s: expected status %d, got %d", count, http.StatusBadRequest, resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp = doRequest(t, ts, http.MethodGet, "/api/questions/categories", nil)
	body := decodeBody(t, resp)
	if categories := body["categories"].([]any); len(categories) == 0 {
		t.Fatalf("expected categories")
	}
}

func TestEventsRequireDatabase(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	resp := doRequest(t, ts, http.MethodGet, "/api/rooms/any/events", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, resp.StatusCode)
	}
	resp.Body.Close()
}

func TestJoinQR(t *testing.T) {
	srv := New(nil, config.Default())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	roomID := createRoom(t, ts, "host", 2)
	resp := doRequest(t, ts, http.MethodGet, "/api/rooms/"+roomID+"/qr", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %s", ct)
	}

	resp = doRequest(t, ts, http.MethodGet, "/api/rooms/missing/qr", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
	resp.Body.Close()
}
