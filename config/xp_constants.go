package config

import (
	"errors"
	"fmt"
	"os"

	"fleetxp/game/attribution"

	"gopkg.in/yaml.v2"
)

var (
	ErrMissingConstant = errors.New("missing xp constant")
	ErrInvalidConstant = errors.New("invalid xp constant")
)

// xpConstants mirrors the YAML file. Pointers tell an absent key apart from a zero value.
type xpConstants struct {
	MinContributionFraction *float64 `yaml:"min_contribution_fraction"`
	XPGainMultiplier        *float64 `yaml:"xp_gain_multiplier"`
	NonCombatXPFraction     *float64 `yaml:"non_combat_xp_fraction"`
	TargetValueLowerBound   *float64 `yaml:"target_value_lower_bound"`
	GiveXPToDisabledShips   *bool    `yaml:"give_xp_to_disabled_ships"`
	OnlyGiveXPForKills      *bool    `yaml:"only_give_xp_for_kills"`
}

func LoadXPConstants(path string) (attribution.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return attribution.Settings{}, fmt.Errorf("read xp constants: %w", err)
	}
	settings, err := ParseXPConstants(data)
	if err != nil {
		return attribution.Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return settings, nil
}

func ParseXPConstants(data []byte) (attribution.Settings, error) {
	var raw xpConstants
	if err := yaml.UnmarshalStrict(data, &raw); err != nil {
		return attribution.Settings{}, fmt.Errorf("parse xp constants: %w", err)
	}

	fractions := []struct {
		key   string
		value *float64
	}{
		{"min_contribution_fraction", raw.MinContributionFraction},
		{"non_combat_xp_fraction", raw.NonCombatXPFraction},
		{"target_value_lower_bound", raw.TargetValueLowerBound},
	}
	for _, f := range fractions {
		if f.value == nil {
			return attribution.Settings{}, fmt.Errorf("%w: %s", ErrMissingConstant, f.key)
		}
		if *f.value < 0 || *f.value > 1 {
			return attribution.Settings{}, fmt.Errorf("%w: %s must lie in [0,1], got %g", ErrInvalidConstant, f.key, *f.value)
		}
	}

	if raw.XPGainMultiplier == nil {
		return attribution.Settings{}, fmt.Errorf("%w: xp_gain_multiplier", ErrMissingConstant)
	}
	if *raw.XPGainMultiplier < 0 {
		return attribution.Settings{}, fmt.Errorf("%w: xp_gain_multiplier must be >= 0, got %g", ErrInvalidConstant, *raw.XPGainMultiplier)
	}
	if raw.GiveXPToDisabledShips == nil {
		return attribution.Settings{}, fmt.Errorf("%w: give_xp_to_disabled_ships", ErrMissingConstant)
	}
	if raw.OnlyGiveXPForKills == nil {
		return attribution.Settings{}, fmt.Errorf("%w: only_give_xp_for_kills", ErrMissingConstant)
	}

	return attribution.Settings{
		MinContributionFraction: *raw.MinContributionFraction,
		XPGainMultiplier:        *raw.XPGainMultiplier,
		NonCombatXPFraction:     *raw.NonCombatXPFraction,
		TargetValueLowerBound:   *raw.TargetValueLowerBound,
		GiveXPToDisabledShips:   *raw.GiveXPToDisabledShips,
		OnlyGiveXPForKills:      *raw.OnlyGiveXPForKills,
	}, nil
}
