package rank

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	maxUsernameLen = 32
	maxGameModeLen = 32
)

var (
	ErrEmptyUsername = errors.New("username must not be empty")
	ErrEmptyGameMode = errors.New("game mode must not be empty")
	ErrNegativeValue = errors.New("score, kills and deaths must be non-negative")
)

// Entry is one submitted round result. Every submission creates a new
// entry; players appear once per submitted round, not once overall.
type Entry struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Score     int       `json:"score"`
	Kills     int       `json:"kills"`
	Deaths    int       `json:"deaths"`
	GameMode  string    `json:"gameMode"`
	CreatedAt time.Time `json:"createdAt"`
	Rank      int       `json:"rank,omitempty"`
}

// Page is one leaderboard query result.
type Page struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Offset  int     `json:"offset"`
	Limit   int     `json:"limit"`
}

// Board holds leaderboard entries ordered by score descending, with
// O(log n) submission and range queries per game mode. Safe for
// concurrent use.
type Board struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	all     *skipList
	byMode  map[string]*skipList
	nextID  uint64
	clock   func() time.Time
}

// NewBoard creates an empty leaderboard.
func NewBoard() *Board {
	return &Board{
		entries: make(map[string]*Entry),
		all:     newSkipList(nil),
		byMode:  make(map[string]*skipList),
		clock:   time.Now,
	}
}

// Submit validates and records a round result, returning the stored
// entry with its current rank within the game mode.
func (b *Board) Submit(username, gameMode string, score, kills, deaths int) (Entry, error) {
	username = strings.TrimSpace(username)
	gameMode = strings.TrimSpace(gameMode)

	if username == "" {
		return Entry{}, ErrEmptyUsername
	}
	if gameMode == "" {
		return Entry{}, ErrEmptyGameMode
	}
	username = truncate(username, maxUsernameLen)
	gameMode = truncate(gameMode, maxGameModeLen)
	if score < 0 || kills < 0 || deaths < 0 {
		return Entry{}, ErrNegativeValue
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	e := &Entry{
		ID:        fmt.Sprintf("entry_%d", b.nextID),
		Username:  username,
		Score:     score,
		Kills:     kills,
		Deaths:    deaths,
		GameMode:  gameMode,
		CreatedAt: b.clock(),
	}
	b.entries[e.ID] = e

	key := scored{name: e.ID, score: float64(score)}
	b.all.insert(key)
	b.modeList(gameMode).insert(key)

	out := *e
	out.Rank = b.modeList(gameMode).rankOf(key)
	return out, nil
}

// Query returns one page of entries sorted by score descending. An
// empty gameMode queries across all modes. Offset below zero is treated
// as zero; limit is clamped to [1, 100] with a default of 20.
func (b *Board) Query(gameMode string, offset, limit int) Page {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	list := b.all
	if gameMode != "" {
		if l, ok := b.byMode[gameMode]; ok {
			list = l
		} else {
			return Page{Entries: []Entry{}, Offset: offset, Limit: limit}
		}
	}

	keys := list.rangeOf(offset+1, offset+limit)
	entries := make([]Entry, 0, len(keys))
	for i, k := range keys {
		e := *b.entries[k.name]
		e.Rank = offset + i + 1
		entries = append(entries, e)
	}

	return Page{
		Entries: entries,
		Total:   list.len(),
		Offset:  offset,
		Limit:   limit,
	}
}

// RankOf returns an entry's 1-indexed rank within its game mode, or 0
// when the entry is unknown.
func (b *Board) RankOf(entryID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.entries[entryID]
	if !ok {
		return 0
	}
	l, ok := b.byMode[e.GameMode]
	if !ok {
		return 0
	}
	return l.rankOf(scored{name: e.ID, score: float64(e.Score)})
}

// Remove deletes an entry.
func (b *Board) Remove(entryID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[entryID]
	if !ok {
		return false
	}
	key := scored{name: e.ID, score: float64(e.Score)}
	b.all.remove(key)
	b.modeList(e.GameMode).remove(key)
	delete(b.entries, entryID)
	return true
}

// Len returns the total number of entries across all modes.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.all.len()
}

// Clear drops all entries.
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = make(map[string]*Entry)
	b.all.clear()
	b.byMode = make(map[string]*skipList)
}

// truncate caps s at max bytes without splitting a multi-byte rune.
func truncate(s string, max int) string {
	for len(s) > max {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
	}
	return s
}

// modeList returns the per-mode index, creating it on first use. Caller
// holds the write lock (or the list already exists).
func (b *Board) modeList(gameMode string) *skipList {
	l, ok := b.byMode[gameMode]
	if !ok {
		l = newSkipList(nil)
		b.byMode[gameMode] = l
	}
	return l
}
