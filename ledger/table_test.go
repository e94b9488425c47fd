package ledger

import (
	"sync"
	"testing"
)

func TestGiveXPIsAdditive(t *testing.T) {
	table := NewTable()
	table.GiveXP("a", 10)
	table.GiveXP("a", 5.5)

	if got := table.XP("a"); got != 15.5 {
		t.Fatalf("expected 15.5, got %.2f", got)
	}
	if got := table.XP("missing"); got != 0 {
		t.Fatalf("expected 0 for unknown member, got %.2f", got)
	}
}

func TestRankedOrdersByXP(t *testing.T) {
	table := NewTable()
	table.GiveXP("low", 1)
	table.GiveXP("high", 100)
	table.GiveXP("tie-b", 50)
	table.GiveXP("tie-a", 50)

	ranked := table.Ranked()
	want := []string{"high", "tie-a", "tie-b", "low"}
	for i, id := range want {
		if ranked[i].MemberID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, ranked[i].MemberID)
		}
	}
}

func TestTakeDirtyClearsAndMarkDirtyRestores(t *testing.T) {
	table := NewTable()
	table.restore("loaded", Entry{XP: 7})
	table.GiveXP("fresh", 3)

	dirty := table.takeDirty()
	if len(dirty) != 1 || dirty["fresh"].XP != 3 {
		t.Fatalf("expected only fresh to be dirty, got %v", dirty)
	}
	if len(table.takeDirty()) != 0 {
		t.Fatalf("dirty set must be cleared")
	}

	table.markDirty("fresh", "never-seen")
	if again := table.takeDirty(); len(again) != 1 {
		t.Fatalf("expected fresh back in the dirty set, got %v", again)
	}
}

func TestConcurrentGiveXP(t *testing.T) {
	table := NewTable()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			table.GiveXP("shared", 2)
			_ = table.XP("shared")
		}()
	}
	wg.Wait()
	if got := table.XP("shared"); got != 100 {
		t.Fatalf("expected 100, got %.2f", got)
	}
}
