package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validConstants = `
min_contribution_fraction: 0.05
xp_gain_multiplier: 1.5
non_combat_xp_fraction: 0.1
target_value_lower_bound: 0.25
give_xp_to_disabled_ships: true
only_give_xp_for_kills: false
`

func TestParseXPConstants(t *testing.T) {
	settings, err := ParseXPConstants([]byte(validConstants))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.XPGainMultiplier != 1.5 || settings.MinContributionFraction != 0.05 {
		t.Fatalf("unexpected settings %+v", settings)
	}
	if !settings.GiveXPToDisabledShips || settings.OnlyGiveXPForKills {
		t.Fatalf("flags not read: %+v", settings)
	}
}

func TestParseXPConstantsRejects(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want error
	}{
		{
			name: "missing multiplier",
			yaml: "min_contribution_fraction: 0.05\nnon_combat_xp_fraction: 0.1\ntarget_value_lower_bound: 0.25\ngive_xp_to_disabled_ships: false\nonly_give_xp_for_kills: false\n",
			want: ErrMissingConstant,
		},
		{
			name: "missing flag",
			yaml: "min_contribution_fraction: 0.05\nxp_gain_multiplier: 1\nnon_combat_xp_fraction: 0.1\ntarget_value_lower_bound: 0.25\ngive_xp_to_disabled_ships: false\n",
			want: ErrMissingConstant,
		},
		{
			name: "fraction above one",
			yaml: "min_contribution_fraction: 1.5\nxp_gain_multiplier: 1\nnon_combat_xp_fraction: 0.1\ntarget_value_lower_bound: 0.25\ngive_xp_to_disabled_ships: false\nonly_give_xp_for_kills: false\n",
			want: ErrInvalidConstant,
		},
		{
			name: "negative multiplier",
			yaml: "min_contribution_fraction: 0.05\nxp_gain_multiplier: -1\nnon_combat_xp_fraction: 0.1\ntarget_value_lower_bound: 0.25\ngive_xp_to_disabled_ships: false\nonly_give_xp_for_kills: false\n",
			want: ErrInvalidConstant,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseXPConstants([]byte(tc.yaml))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestParseXPConstantsRejectsUnknownKeys(t *testing.T) {
	if _, err := ParseXPConstants([]byte(validConstants + "xp_gain_multiplyer: 2\n")); err == nil {
		t.Fatalf("a misspelled key must not be ignored")
	}
}

func TestShippedConstantsFileIsValid(t *testing.T) {
	if _, err := LoadXPConstants("xp_constants.yaml"); err != nil {
		t.Fatalf("shipped constants are invalid: %v", err)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xp.yaml")
	if err := os.WriteFile(path, []byte(validConstants), 0o600); err != nil {
		t.Fatalf("write constants: %v", err)
	}
	t.Setenv("XP_CONSTANTS_FILE", path)
	t.Setenv("APP_PORT", "9000")
	t.Setenv("MAX_CONNECTIONS", "12")
	t.Setenv("AUTOSAVE_INTERVAL", "90")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")

	if err := load(); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if AppPort != "9000" || MaxConnections != 12 {
		t.Fatalf("unexpected ports/limits %s %d", AppPort, MaxConnections)
	}
	if AutosaveInterval != 90*time.Second {
		t.Fatalf("expected 90s autosave, got %s", AutosaveInterval)
	}
	if len(KafkaBrokers) != 2 || KafkaBrokers[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers %v", KafkaBrokers)
	}
	if XP.XPGainMultiplier != 1.5 {
		t.Fatalf("constants not loaded: %+v", XP)
	}
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("XP_CONSTANTS_FILE", "xp_constants.yaml")
	t.Setenv("MAX_CONNECTIONS", "many")
	if err := load(); err == nil {
		t.Fatalf("expected an error for a non numeric MAX_CONNECTIONS")
	}

	t.Setenv("MAX_CONNECTIONS", "10")
	t.Setenv("AUTOSAVE_INTERVAL", "-5s")
	if err := load(); err == nil {
		t.Fatalf("expected an error for a negative autosave interval")
	}
}
