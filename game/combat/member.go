package combat

import "fleetxp/types"

// StatBonus is a stack of modifiers applied to a base stat.
// A zero Mult is treated as 1.
type StatBonus struct {
	Flat    float64 `json:"flat,omitempty"`
	Percent float64 `json:"percent,omitempty"`
	Mult    float64 `json:"mult,omitempty"`
}

func (b StatBonus) ComputeEffective(base float64) float64 {
	mult := b.Mult
	if mult == 0 {
		mult = 1
	}
	return (base*(1+b.Percent/100) + b.Flat) * mult
}

// Member is a ship (or a temporary member standing in for a fighter wing or
// a module) for the duration of an engagement.
type Member struct {
	ID               string
	ShipName         string
	Loadout          *Loadout
	Civilian         bool
	DeploymentCost   float64
	DeploymentPoints float64
	HullBonus        StatBonus
}

// EffectiveHitpoints is the hull after modifiers.
func (m *Member) EffectiveHitpoints() float64 {
	if m.Loadout == nil {
		return 0
	}
	return m.HullBonus.ComputeEffective(m.Loadout.Hitpoints)
}

func (m *Member) SetLoadout(l *Loadout) {
	m.Loadout = l
}

// DeployedMember records one member's participation in an engagement.
type DeployedMember struct {
	Member      *Member
	FighterWing bool
	// SourceShip is the carrier that launched the wing, nil when it cannot be resolved.
	SourceShip *Member
	Outcome    types.Outcome
}

// FleetResult is one side's view of an engagement.
type FleetResult struct {
	AllEverDeployed []*DeployedMember
}

// MemberIDs returns the ids of deployed members whose outcome is one of outcomes.
// With no outcomes given every deployed member is returned.
func (f *FleetResult) MemberIDs(outcomes ...types.Outcome) []string {
	if f == nil {
		return nil
	}
	ids := make([]string, 0, len(f.AllEverDeployed))
	for _, dm := range f.AllEverDeployed {
		if dm == nil || dm.Member == nil {
			continue
		}
		if len(outcomes) > 0 && !containsOutcome(outcomes, dm.Outcome) {
			continue
		}
		ids = append(ids, dm.Member.ID)
	}
	return ids
}

// Members returns every member ever deployed on this side.
func (f *FleetResult) Members() []*Member {
	if f == nil {
		return nil
	}
	members := make([]*Member, 0, len(f.AllEverDeployed))
	for _, dm := range f.AllEverDeployed {
		if dm == nil || dm.Member == nil {
			continue
		}
		members = append(members, dm.Member)
	}
	return members
}

func containsOutcome(outcomes []types.Outcome, o types.Outcome) bool {
	for _, candidate := range outcomes {
		if candidate == o {
			return true
		}
	}
	return false
}
