package ledger

import (
	"sort"
	"sync"
)

// Entry is what the ledger knows about one fleet member.
type Entry struct {
	XP float64
	// PermaModsOverLimit belongs to the perma-mod slot feature, which does
	// not run here yet; the ledger only carries it through load and save.
	PermaModsOverLimit int
}

// Table is the in-memory XP ledger for a session. It is safe for concurrent
// use and remembers which entries changed since the last save.
type Table struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	dirty   map[string]struct{}
}

func NewTable() *Table {
	return &Table{
		entries: make(map[string]*Entry),
		dirty:   make(map[string]struct{}),
	}
}

func (t *Table) XP(memberID string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if e, ok := t.entries[memberID]; ok {
		return e.XP
	}
	return 0
}

func (t *Table) GiveXP(memberID string, amount float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[memberID]
	if !ok {
		e = &Entry{}
		t.entries[memberID] = e
	}
	e.XP += amount
	t.dirty[memberID] = struct{}{}
}

func (t *Table) Get(memberID string) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[memberID]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Len returns the number of members with an entry.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Ranked returns all entries ordered by XP, highest first. Ties are broken by id.
func (t *Table) Ranked() []Ranked {
	t.mu.RLock()
	out := make([]Ranked, 0, len(t.entries))
	for id, e := range t.entries {
		out = append(out, Ranked{MemberID: id, Entry: *e})
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].XP != out[j].XP {
			return out[i].XP > out[j].XP
		}
		return out[i].MemberID < out[j].MemberID
	})
	return out
}

type Ranked struct {
	MemberID string
	Entry
}

// restore loads a persisted entry without marking it dirty.
func (t *Table) restore(memberID string, e Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	copied := e
	t.entries[memberID] = &copied
}

// takeDirty returns the changed entries and clears the dirty set.
func (t *Table) takeDirty() map[string]Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]Entry, len(t.dirty))
	for id := range t.dirty {
		out[id] = *t.entries[id]
	}
	t.dirty = make(map[string]struct{})
	return out
}

// markDirty puts ids back into the dirty set after a failed save.
func (t *Table) markDirty(ids ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range ids {
		if _, ok := t.entries[id]; ok {
			t.dirty[id] = struct{}{}
		}
	}
}
