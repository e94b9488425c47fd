package types

import "testing"

func TestOutcomeLost(t *testing.T) {
	cases := map[Outcome]bool{
		OutcomeDeployed:  false,
		OutcomeRetreated: false,
		OutcomeDisabled:  true,
		OutcomeDestroyed: true,
	}
	for outcome, want := range cases {
		if got := outcome.Lost(); got != want {
			t.Fatalf("%s: expected lost=%v, got %v", outcome, want, got)
		}
	}
}

func TestOutcomeText(t *testing.T) {
	var o Outcome
	if err := o.UnmarshalText([]byte("disabled")); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if o != OutcomeDisabled {
		t.Fatalf("expected disabled, got %s", o)
	}
	if err := o.UnmarshalText([]byte("vaporized")); err == nil {
		t.Fatalf("expected error for unknown outcome")
	}
}

func TestHullSizeText(t *testing.T) {
	var h HullSize
	if err := h.UnmarshalText([]byte("cruiser")); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if h != HullSizeCruiser {
		t.Fatalf("expected cruiser, got %s", h)
	}
	text, _ := HullSizeCapital.MarshalText()
	if string(text) != "capital" {
		t.Fatalf("expected capital, got %s", text)
	}
}
