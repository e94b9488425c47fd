package combat

import (
	"encoding/json"
	"errors"
	"fmt"

	"fleetxp/types"

	"github.com/google/uuid"
)

var (
	ErrUnknownMember  = errors.New("unknown member")
	ErrUnknownLoadout = errors.New("unknown loadout")
	ErrDuplicateID    = errors.New("duplicate id")
	ErrModuleCycle    = errors.New("module cycle")
)

// Report is the JSON form of an EngagementResult. Members and module slots
// reference loadouts by their surrogate id, so building the result back
// yields one shared *Loadout per id.
type Report struct {
	ID          string           `json:"id,omitempty"`
	PlayerWon   bool             `json:"player_won"`
	Loadouts    []LoadoutRecord  `json:"loadouts"`
	Members     []MemberRecord   `json:"members"`
	Player      []DeployedRecord `json:"player_deployed"`
	Enemy       []DeployedRecord `json:"enemy_deployed"`
	Damage      []DamageRecord   `json:"damage"`
	PlayerFleet []string         `json:"player_fleet"`
}

type LoadoutRecord struct {
	ID        uuid.UUID            `json:"id"`
	HullID    string               `json:"hull_id"`
	HullName  string               `json:"hull_name"`
	HullSize  types.HullSize       `json:"hull_size"`
	Hitpoints float64              `json:"hitpoints"`
	Stock     bool                 `json:"stock,omitempty"`
	PermaMods []string             `json:"perma_mods,omitempty"`
	Modules   map[string]uuid.UUID `json:"modules,omitempty"`
}

type MemberRecord struct {
	ID               string    `json:"id"`
	ShipName         string    `json:"ship_name"`
	LoadoutID        uuid.UUID `json:"loadout_id"`
	Civilian         bool      `json:"civilian,omitempty"`
	DeploymentCost   float64   `json:"deployment_cost"`
	DeploymentPoints float64   `json:"deployment_points"`
	HullBonus        StatBonus `json:"hull_bonus"`
}

type DeployedRecord struct {
	MemberID     string        `json:"member_id"`
	FighterWing  bool          `json:"fighter_wing,omitempty"`
	SourceShipID string        `json:"source_ship_id,omitempty"`
	Outcome      types.Outcome `json:"outcome"`
}

type DamageRecord struct {
	DealerID   string  `json:"dealer_id"`
	TargetID   string  `json:"target_id"`
	HullDamage float64 `json:"hull_damage"`
}

// DecodeReport parses a JSON report and builds the engagement result.
func DecodeReport(data []byte) (*EngagementResult, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode engagement report: %w", err)
	}
	return r.Build()
}

// checkModuleCycle walks the module tree below l. Loadouts on the current
// branch are marked visiting; finished ones are done and never walked again,
// so shared modules are visited once.
func checkModuleCycle(l *Loadout, state map[uuid.UUID]visit) error {
	if l == nil {
		return nil
	}
	switch state[l.ID] {
	case visiting:
		return fmt.Errorf("loadout %s: %w", l.ID, ErrModuleCycle)
	case done:
		return nil
	}
	state[l.ID] = visiting
	for _, slot := range l.ModuleSlots() {
		if err := checkModuleCycle(l.Modules[slot], state); err != nil {
			return err
		}
	}
	state[l.ID] = done
	return nil
}

type visit uint8

const (
	unvisited visit = iota
	visiting
	done
)

// Build resolves every reference in the report. Module references must form
// a tree: a loadout may not contain itself at any depth.
func (r *Report) Build() (*EngagementResult, error) {
	loadouts := make(map[uuid.UUID]*Loadout, len(r.Loadouts))
	for _, rec := range r.Loadouts {
		if _, exists := loadouts[rec.ID]; exists {
			return nil, fmt.Errorf("loadout %s: %w", rec.ID, ErrDuplicateID)
		}
		loadouts[rec.ID] = &Loadout{
			ID:        rec.ID,
			HullID:    rec.HullID,
			HullName:  rec.HullName,
			HullSize:  rec.HullSize,
			Hitpoints: rec.Hitpoints,
			Stock:     rec.Stock,
			PermaMods: rec.PermaMods,
		}
	}
	// Second pass so modules may reference loadouts listed later.
	for _, rec := range r.Loadouts {
		for slot, moduleID := range rec.Modules {
			module, ok := loadouts[moduleID]
			if !ok {
				return nil, fmt.Errorf("module %s of loadout %s: %w", slot, rec.ID, ErrUnknownLoadout)
			}
			loadouts[rec.ID].SetModule(slot, module)
		}
	}
	state := make(map[uuid.UUID]visit, len(loadouts))
	for _, rec := range r.Loadouts {
		if err := checkModuleCycle(loadouts[rec.ID], state); err != nil {
			return nil, err
		}
	}

	members := make(map[string]*Member, len(r.Members))
	for _, rec := range r.Members {
		if _, exists := members[rec.ID]; exists {
			return nil, fmt.Errorf("member %s: %w", rec.ID, ErrDuplicateID)
		}
		var loadout *Loadout
		if rec.LoadoutID != uuid.Nil {
			l, ok := loadouts[rec.LoadoutID]
			if !ok {
				return nil, fmt.Errorf("member %s: %w %s", rec.ID, ErrUnknownLoadout, rec.LoadoutID)
			}
			loadout = l
		}
		members[rec.ID] = &Member{
			ID:               rec.ID,
			ShipName:         rec.ShipName,
			Loadout:          loadout,
			Civilian:         rec.Civilian,
			DeploymentCost:   rec.DeploymentCost,
			DeploymentPoints: rec.DeploymentPoints,
			HullBonus:        rec.HullBonus,
		}
	}

	lookup := func(id string) (*Member, error) {
		m, ok := members[id]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownMember, id)
		}
		return m, nil
	}

	player, err := buildFleetResult(r.Player, lookup)
	if err != nil {
		return nil, fmt.Errorf("player fleet: %w", err)
	}
	enemy, err := buildFleetResult(r.Enemy, lookup)
	if err != nil {
		return nil, fmt.Errorf("enemy fleet: %w", err)
	}

	damage := NewDamageData()
	for _, rec := range r.Damage {
		dealer, err := lookup(rec.DealerID)
		if err != nil {
			return nil, fmt.Errorf("damage dealer: %w", err)
		}
		target, err := lookup(rec.TargetID)
		if err != nil {
			return nil, fmt.Errorf("damage target: %w", err)
		}
		damage.Record(dealer, target, rec.HullDamage)
	}

	fleet := make([]*Member, 0, len(r.PlayerFleet))
	for _, id := range r.PlayerFleet {
		m, err := lookup(id)
		if err != nil {
			return nil, fmt.Errorf("player fleet roster: %w", err)
		}
		fleet = append(fleet, m)
	}

	id := uuid.New()
	if r.ID != "" {
		parsed, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("engagement id: %w", err)
		}
		id = parsed
	}

	result := &EngagementResult{
		ID:          id,
		PlayerWon:   r.PlayerWon,
		Damage:      damage,
		PlayerFleet: fleet,
	}
	if r.PlayerWon {
		result.Winner, result.Loser = player, enemy
	} else {
		result.Winner, result.Loser = enemy, player
	}
	return result, nil
}

func buildFleetResult(records []DeployedRecord, lookup func(string) (*Member, error)) (*FleetResult, error) {
	if len(records) == 0 {
		return &FleetResult{}, nil
	}
	fr := &FleetResult{AllEverDeployed: make([]*DeployedMember, 0, len(records))}
	for _, rec := range records {
		m, err := lookup(rec.MemberID)
		if err != nil {
			return nil, err
		}
		dm := &DeployedMember{Member: m, FighterWing: rec.FighterWing, Outcome: rec.Outcome}
		if rec.SourceShipID != "" {
			// An unknown source ship leaves the wing orphaned rather than failing the report.
			dm.SourceShip = optionalMember(lookup, rec.SourceShipID)
		}
		fr.AllEverDeployed = append(fr.AllEverDeployed, dm)
	}
	return fr, nil
}

func optionalMember(lookup func(string) (*Member, error), id string) *Member {
	m, err := lookup(id)
	if err != nil {
		return nil
	}
	return m
}

// NewReport flattens an engagement result into its JSON form.
func NewReport(result *EngagementResult) *Report {
	r := &Report{
		ID:        result.ID.String(),
		PlayerWon: result.PlayerWon,
	}
	seenLoadouts := make(map[uuid.UUID]bool)
	seenMembers := make(map[string]bool)

	var addLoadout func(l *Loadout)
	addLoadout = func(l *Loadout) {
		if l == nil || seenLoadouts[l.ID] {
			return
		}
		seenLoadouts[l.ID] = true
		rec := LoadoutRecord{
			ID:        l.ID,
			HullID:    l.HullID,
			HullName:  l.HullName,
			HullSize:  l.HullSize,
			Hitpoints: l.Hitpoints,
			Stock:     l.Stock,
			PermaMods: l.PermaMods,
		}
		if len(l.Modules) > 0 {
			rec.Modules = make(map[string]uuid.UUID, len(l.Modules))
		}
		r.Loadouts = append(r.Loadouts, rec)
		idx := len(r.Loadouts) - 1
		for _, slot := range l.ModuleSlots() {
			module := l.Modules[slot]
			if module == nil {
				continue
			}
			r.Loadouts[idx].Modules[slot] = module.ID
			addLoadout(module)
		}
	}
	addMember := func(m *Member) {
		if m == nil || seenMembers[m.ID] {
			return
		}
		seenMembers[m.ID] = true
		addLoadout(m.Loadout)
		rec := MemberRecord{
			ID:               m.ID,
			ShipName:         m.ShipName,
			Civilian:         m.Civilian,
			DeploymentCost:   m.DeploymentCost,
			DeploymentPoints: m.DeploymentPoints,
			HullBonus:        m.HullBonus,
		}
		if m.Loadout != nil {
			rec.LoadoutID = m.Loadout.ID
		}
		r.Members = append(r.Members, rec)
	}
	deployed := func(fr *FleetResult) []DeployedRecord {
		if fr == nil {
			return nil
		}
		out := make([]DeployedRecord, 0, len(fr.AllEverDeployed))
		for _, dm := range fr.AllEverDeployed {
			addMember(dm.Member)
			rec := DeployedRecord{MemberID: dm.Member.ID, FighterWing: dm.FighterWing, Outcome: dm.Outcome}
			if dm.SourceShip != nil {
				addMember(dm.SourceShip)
				rec.SourceShipID = dm.SourceShip.ID
			}
			out = append(out, rec)
		}
		return out
	}

	player, enemy := result.Sides()
	r.Player = deployed(player)
	r.Enemy = deployed(enemy)
	result.Damage.Each(func(dealer, target *Member, hullDamage float64) {
		addMember(dealer)
		addMember(target)
		r.Damage = append(r.Damage, DamageRecord{DealerID: dealer.ID, TargetID: target.ID, HullDamage: hullDamage})
	})
	for _, m := range result.PlayerFleet {
		addMember(m)
		r.PlayerFleet = append(r.PlayerFleet, m.ID)
	}
	return r
}
