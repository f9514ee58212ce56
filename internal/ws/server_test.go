package ws

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rodzevich/tic-tac-toe/internal/match"
	"github.com/rodzevich/tic-tac-toe/internal/store"
)

type memRecords struct {
	mu    sync.Mutex
	saved map[string]store.PlayerRecord
}

func newMemRecords() *memRecords {
	return &memRecords{saved: map[string]store.PlayerRecord{}}
}

func (m *memRecords) FindPlayer(_ context.Context, name string) (*store.PlayerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.saved[name]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (m *memRecords) UpsertPlayer(_ context.Context, r *store.PlayerRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[r.Name] = *r
	return nil
}

func (m *memRecords) get(name string) store.PlayerRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved[name]
}

func newTestServer(t *testing.T, maxWaiting time.Duration) (*httptest.Server, *memRecords, *match.Coordinator) {
	t.Helper()
	recs := newMemRecords()
	coord := match.New(recs, maxWaiting, time.Millisecond)
	ts := httptest.NewServer(http.HandlerFunc(NewServer(recs, coord).HandleWS))
	t.Cleanup(ts.Close)
	return ts, recs, coord
}

func dial(t *testing.T, ts *httptest.Server, name string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "?name=" + name
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", name, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

type frame struct {
	Action string `json:"action"`
	Active string `json:"active"`
	Winner string `json:"winner"`
	Error  string `json:"error"`
	You    struct {
		Name string `json:"name"`
		Sign string `json:"sign"`
	} `json:"you"`
	Opponent struct {
		Name string `json:"name"`
	} `json:"opponent"`
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

func TestMissingNameRejected(t *testing.T) {
	ts, _, _ := newTestServer(t, time.Hour)

	resp, err := http.Get(ts.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Name is required") {
		t.Fatalf("body = %s", body)
	}
}

func TestDuplicateNameRejected(t *testing.T) {
	ts, _, coord := newTestServer(t, time.Hour)
	dial(t, ts, "Ann")

	waitOnline(t, coord, "Ann")
	resp, err := http.Get(ts.URL + "?name=Ann")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "already online") {
		t.Fatalf("body = %s", body)
	}
}

func TestQueuedAndInvalidArgs(t *testing.T) {
	ts, _, _ := newTestServer(t, time.Hour)
	conn := dial(t, ts, "Ann")

	if f := readFrame(t, conn); f.Action != "queued" {
		t.Fatalf("first frame action = %q, want queued", f.Action)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"turn","args":["x",1]}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if f := readFrame(t, conn); f.Error != "Invalid turn args" {
		t.Fatalf("error = %q, want Invalid turn args", f.Error)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"turn"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if f := readFrame(t, conn); f.Error != "Action and args required" {
		t.Fatalf("error = %q, want Action and args required", f.Error)
	}
}

func TestCloseFrameDisconnects(t *testing.T) {
	ts, _, coord := newTestServer(t, time.Hour)
	conn := dial(t, ts, "Ann")
	waitOnline(t, coord, "Ann")

	if err := conn.WriteMessage(websocket.TextMessage, []byte("close")); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for coord.IsOnline("Ann") && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if coord.IsOnline("Ann") {
		t.Fatal("player still online after close frame")
	}
}

func TestTwoPlayersPlayToWin(t *testing.T) {
	ts, recs, _ := newTestServer(t, time.Hour)
	ann := dial(t, ts, "Ann")
	bob := dial(t, ts, "Bob")

	movesBySign := map[string][][2]int{
		"X": {{0, 0}, {0, 1}, {0, 2}},
		"O": {{1, 0}, {1, 1}},
	}

	type result struct {
		name   string
		sign   string
		winner string
	}
	results := make(chan result, 2)

	play := func(conn *websocket.Conn) {
		var sign string
		moves := 0
		for {
			_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			var f frame
			if err := conn.ReadJSON(&f); err != nil {
				results <- result{winner: "read error: " + err.Error()}
				return
			}
			switch f.Action {
			case "queued":
			case "turn":
				sign = f.You.Sign
				if f.Active != "you" {
					continue
				}
				m := movesBySign[sign][moves]
				moves++
				payload, _ := json.Marshal(map[string]any{"action": "turn", "args": []int{m[0], m[1]}})
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					results <- result{winner: "write error: " + err.Error()}
					return
				}
			case "game_finished":
				results <- result{name: f.You.Name, sign: sign, winner: f.Winner}
				return
			}
		}
	}
	go play(ann)
	go play(bob)

	bySign := map[string]result{}
	for i := 0; i < 2; i++ {
		select {
		case r := <-results:
			bySign[r.sign] = r
		case <-time.After(10 * time.Second):
			t.Fatal("game did not finish")
		}
	}

	if bySign["X"].winner != "you" {
		t.Fatalf("X outcome = %q, want you", bySign["X"].winner)
	}
	if bySign["O"].winner != "opponent" {
		t.Fatalf("O outcome = %q, want opponent", bySign["O"].winner)
	}

	annRec, bobRec := recs.get("Ann"), recs.get("Bob")
	if annRec.Plays != 1 || bobRec.Plays != 1 {
		t.Fatalf("plays = %d/%d, want 1/1", annRec.Plays, bobRec.Plays)
	}
	if annRec.Wins+bobRec.Wins != 1 || annRec.Loses+bobRec.Loses != 1 {
		t.Fatalf("counters: ann=%+v bob=%+v", annRec, bobRec)
	}
}

func waitOnline(t *testing.T, coord *match.Coordinator, name string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !coord.IsOnline(name) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !coord.IsOnline(name) {
		t.Fatalf("player %s never came online", name)
	}
}
