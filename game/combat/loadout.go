package combat

import (
	"slices"
	"sort"

	"fleetxp/types"

	"github.com/google/uuid"
)

// Loadout is a ship's equipment configuration. Loadouts have no natural key,
// so each one carries a surrogate identity assigned when it is created. Two
// loadouts with identical contents are still different loadouts.
type Loadout struct {
	ID        uuid.UUID
	HullID    string
	HullName  string
	HullSize  types.HullSize
	Hitpoints float64
	// Stock loadouts are shared templates and must be cloned before mutation.
	Stock     bool
	PermaMods []string
	Modules   map[string]*Loadout
}

func NewLoadout(hullID, hullName string, size types.HullSize, hitpoints float64) *Loadout {
	return &Loadout{
		ID:        uuid.New(),
		HullID:    hullID,
		HullName:  hullName,
		HullSize:  size,
		Hitpoints: hitpoints,
	}
}

// HullNameWithDashClass returns e.g. "Onslaught-class".
func (l *Loadout) HullNameWithDashClass() string {
	return l.HullName + "-class"
}

// SetModule attaches a module loadout to the given slot.
func (l *Loadout) SetModule(slot string, module *Loadout) {
	if l.Modules == nil {
		l.Modules = make(map[string]*Loadout)
	}
	l.Modules[slot] = module
}

// ModuleSlots returns the occupied module slots in a stable order.
func (l *Loadout) ModuleSlots() []string {
	slots := make([]string, 0, len(l.Modules))
	for slot := range l.Modules {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	return slots
}

func (l *Loadout) ModuleLoadout(slot string) *Loadout {
	return l.Modules[slot]
}

func (l *Loadout) HasPermaMod(id string) bool {
	return slices.Contains(l.PermaMods, id)
}

func (l *Loadout) AddPermaMod(id string) {
	if l.HasPermaMod(id) {
		return
	}
	l.PermaMods = append(l.PermaMods, id)
}

// Clone returns a deep copy with fresh identities. The copy is never stock.
func (l *Loadout) Clone() *Loadout {
	c := &Loadout{
		ID:        uuid.New(),
		HullID:    l.HullID,
		HullName:  l.HullName,
		HullSize:  l.HullSize,
		Hitpoints: l.Hitpoints,
		PermaMods: slices.Clone(l.PermaMods),
	}
	for slot, module := range l.Modules {
		if module == nil {
			continue
		}
		c.SetModule(slot, module.Clone())
	}
	return c
}
