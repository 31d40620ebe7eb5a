package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nova-arena/internal/game"
	"nova-arena/internal/rank"
)

// mockSession implements SessionInterface without running the loop.
type mockSession struct {
	snap   *game.SessionSnapshot
	active bool
	input  *game.InputAggregator
	result game.RoundResult

	startCalls int
	endCalls   int
}

func newMockSession() *mockSession {
	return &mockSession{
		snap: &game.SessionSnapshot{
			TickNumber: 42,
			AliveCount: 3,
			Score:      150,
			Kills:      2,
		},
		input: game.NewInputAggregator(),
	}
}

func (m *mockSession) Snapshot() *game.SessionSnapshot { return m.snap }
func (m *mockSession) RoundActive() bool               { return m.active }
func (m *mockSession) Input() *game.InputAggregator    { return m.input }

func (m *mockSession) StartRound() {
	m.startCalls++
	m.active = true
}

func (m *mockSession) EndRound() game.RoundResult {
	m.endCalls++
	m.active = false
	return m.result
}

func testRouter(t *testing.T, session SessionInterface, board BoardInterface) http.Handler {
	t.Helper()

	// Generous budget so the limiter never interferes with test requests.
	limiter := NewIPRateLimiter(RateLimitConfig{
		RequestsPerSecond: 10000,
		Burst:             10000,
		CleanupInterval:   time.Minute,
	})
	t.Cleanup(limiter.Stop)

	return NewRouter(RouterConfig{
		Session:        session,
		Board:          board,
		RateLimiter:    limiter,
		DisableLogging: true,
	})
}

func TestGetState(t *testing.T) {
	session := newMockSession()
	router := testRouter(t, session, rank.NewBoard())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/state", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var snap game.SessionSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.TickNumber != 42 {
		t.Errorf("tickNumber = %d, want 42", snap.TickNumber)
	}
	if snap.Score != 150 {
		t.Errorf("score = %d, want 150", snap.Score)
	}
}

func TestGetStats(t *testing.T) {
	session := newMockSession()
	board := rank.NewBoard()
	if _, err := board.Submit("alice", "classic", 100, 1, 0); err != nil {
		t.Fatalf("submit: %v", err)
	}

	router := NewRouter(RouterConfig{
		Session: session,
		Board:   board,
		EventStats: func() map[string]uint64 {
			return map[string]uint64{"emitted": 7}
		},
		RateLimiter: NewIPRateLimiter(RateLimitConfig{
			RequestsPerSecond: 10000,
			Burst:             10000,
			CleanupInterval:   time.Minute,
		}),
		DisableLogging: true,
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var stats map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats["tickNumber"].(float64) != 42 {
		t.Errorf("tickNumber = %v, want 42", stats["tickNumber"])
	}
	if stats["leaderboard"].(float64) != 1 {
		t.Errorf("leaderboard = %v, want 1", stats["leaderboard"])
	}
	events := stats["events"].(map[string]interface{})
	if events["emitted"].(float64) != 7 {
		t.Errorf("events.emitted = %v, want 7", events["emitted"])
	}
}

func TestRoundLifecycle(t *testing.T) {
	session := newMockSession()
	session.result = game.RoundResult{Score: 500, Kills: 5, Deaths: 1}
	router := testRouter(t, session, rank.NewBoard())

	// End without a round running is a conflict.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/round/end", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("end before start: status = %d, want 409", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/round/start", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("start: status = %d, want 200", rec.Code)
	}
	if session.startCalls != 1 {
		t.Fatalf("startCalls = %d, want 1", session.startCalls)
	}

	// Starting again while active is a conflict.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/round/start", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("double start: status = %d, want 409", rec.Code)
	}
	if session.startCalls != 1 {
		t.Fatalf("startCalls after rejected start = %d, want 1", session.startCalls)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/round/end", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("end: status = %d, want 200", rec.Code)
	}
	var result game.RoundResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Score != 500 || result.Kills != 5 || result.Deaths != 1 {
		t.Errorf("result = %+v, want {500 5 1}", result)
	}
}

func TestSubmitScore(t *testing.T) {
	board := rank.NewBoard()
	router := testRouter(t, newMockSession(), board)

	body, _ := json.Marshal(map[string]interface{}{
		"username": "alice",
		"score":    250,
		"kills":    3,
		"deaths":   1,
		"gameMode": "classic",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/leaderboard", bytes.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var entry rank.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry.Username != "alice" || entry.Score != 250 {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Rank != 1 {
		t.Errorf("rank = %d, want 1", entry.Rank)
	}
	if board.Len() != 1 {
		t.Errorf("board len = %d, want 1", board.Len())
	}
}

func TestSubmitScoreValidation(t *testing.T) {
	router := testRouter(t, newMockSession(), rank.NewBoard())

	tests := []struct {
		name string
		body string
		want int
	}{
		{"garbage body", "{not json", http.StatusBadRequest},
		{"empty username", `{"username":"","score":10,"gameMode":"classic"}`, http.StatusBadRequest},
		{"empty game mode", `{"username":"alice","score":10,"gameMode":""}`, http.StatusBadRequest},
		{"negative score", `{"username":"alice","score":-5,"gameMode":"classic"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/leaderboard", bytes.NewReader([]byte(tt.body)))
			router.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestGetLeaderboardPaging(t *testing.T) {
	board := rank.NewBoard()
	for i := 0; i < 5; i++ {
		if _, err := board.Submit("player", "classic", 100*(i+1), i, 0); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	router := testRouter(t, newMockSession(), board)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/leaderboard?gameMode=classic&offset=1&limit=2", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var page rank.Page
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 5 {
		t.Errorf("total = %d, want 5", page.Total)
	}
	if len(page.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(page.Entries))
	}
	if page.Entries[0].Score != 400 {
		t.Errorf("first score = %d, want 400", page.Entries[0].Score)
	}
	if page.Entries[0].Rank != 2 {
		t.Errorf("first rank = %d, want 2", page.Entries[0].Rank)
	}
}

func TestRateLimiterRejects(t *testing.T) {
	limiter := NewIPRateLimiter(RateLimitConfig{
		RequestsPerSecond: 1,
		Burst:             2,
		CleanupInterval:   time.Minute,
	})
	t.Cleanup(limiter.Stop)

	router := NewRouter(RouterConfig{
		Session:        newMockSession(),
		Board:          rank.NewBoard(),
		RateLimiter:    limiter,
		DisableLogging: true,
	})

	got429 := false
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/state", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		router.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			got429 = true
			if rec.Header().Get("Retry-After") == "" {
				t.Error("429 without Retry-After header")
			}
		}
	}
	if !got429 {
		t.Error("burst of 5 requests never hit the rate limit")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		realIP string
		want   string
	}{
		{"remote addr only", "192.0.2.1:5000", "", "", "192.0.2.1"},
		{"forwarded for wins", "10.0.0.1:5000", "198.51.100.7, 10.0.0.1", "", "198.51.100.7"},
		{"real ip fallback", "10.0.0.1:5000", "", "198.51.100.8", "198.51.100.8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := GetClientIP(req); got != tt.want {
				t.Errorf("GetClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		origin string
		want   bool
	}{
		{"http://localhost:3000", true},
		{"http://127.0.0.1:8080", true},
		{"https://evil.example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsAllowedOrigin(tt.origin); got != tt.want {
			t.Errorf("IsAllowedOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}
