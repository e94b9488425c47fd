package attribution

import (
	"sort"

	"fleetxp/game/combat"

	"github.com/google/uuid"
)

// OwnerTable maps a sub-unit id to the id of the member that owns it.
type OwnerTable map[string]string

// subUnits returns the table keys in a stable order.
func (t OwnerTable) subUnits() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CarrierTable maps every deployed fighter wing to the carrier that launched it.
// Wings whose carrier cannot be resolved are left out.
func CarrierTable(fleet []*combat.DeployedMember) OwnerTable {
	table := make(OwnerTable)
	for _, dm := range fleet {
		if dm == nil || dm.Member == nil || !dm.FighterWing {
			continue
		}
		if dm.SourceShip == nil {
			continue
		}
		table[dm.Member.ID] = dm.SourceShip.ID
	}
	return table
}

// ModuleTable maps the temporary member standing in for each module to the
// deployed member whose loadout carries that module. Modules are matched by
// loadout identity, never by contents.
func ModuleTable(fleet []*combat.DeployedMember, dealers []*combat.Member) OwnerTable {
	byLoadout := make(map[uuid.UUID]string, len(dealers))
	for _, m := range dealers {
		if m == nil || m.Loadout == nil {
			continue
		}
		byLoadout[m.Loadout.ID] = m.ID
	}

	table := make(OwnerTable)
	for _, dm := range fleet {
		if dm == nil || dm.Member == nil || dm.Member.Loadout == nil {
			continue
		}
		loadout := dm.Member.Loadout
		for _, slot := range loadout.ModuleSlots() {
			module := loadout.ModuleLoadout(slot)
			if module == nil {
				continue
			}
			if moduleID, ok := byLoadout[module.ID]; ok {
				table[moduleID] = dm.Member.ID
			}
		}
	}
	return table
}
