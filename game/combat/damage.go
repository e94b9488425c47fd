package combat

import "sort"

// DamageData is the damage ledger of one engagement: for every dealer, the
// absolute hull damage it dealt to each target.
type DamageData struct {
	dealt map[string]*DealtBy
}

type DealtBy struct {
	Member *Member
	Damage map[string]*DamageTo
}

type DamageTo struct {
	Member     *Member
	HullDamage float64
}

func NewDamageData() *DamageData {
	return &DamageData{dealt: make(map[string]*DealtBy)}
}

// Record adds hull damage dealt by dealer to target. Non-positive amounts are ignored.
func (d *DamageData) Record(dealer, target *Member, hullDamage float64) {
	if dealer == nil || target == nil || hullDamage <= 0 {
		return
	}
	by, ok := d.dealt[dealer.ID]
	if !ok {
		by = &DealtBy{Member: dealer, Damage: make(map[string]*DamageTo)}
		d.dealt[dealer.ID] = by
	}
	to, ok := by.Damage[target.ID]
	if !ok {
		to = &DamageTo{Member: target}
		by.Damage[target.ID] = to
	}
	to.HullDamage += hullDamage
}

// Dealers returns every member that dealt damage, ordered by id.
func (d *DamageData) Dealers() []*Member {
	if d == nil {
		return nil
	}
	ids := make([]string, 0, len(d.dealt))
	for id := range d.dealt {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	dealers := make([]*Member, 0, len(ids))
	for _, id := range ids {
		dealers = append(dealers, d.dealt[id].Member)
	}
	return dealers
}

func (d *DamageData) DealtBy(dealerID string) (*DealtBy, bool) {
	if d == nil {
		return nil, false
	}
	by, ok := d.dealt[dealerID]
	return by, ok
}

// Each calls fn for every (dealer, target) pair in dealer then target id order.
func (d *DamageData) Each(fn func(dealer, target *Member, hullDamage float64)) {
	for _, dealer := range d.Dealers() {
		by := d.dealt[dealer.ID]
		targetIDs := make([]string, 0, len(by.Damage))
		for id := range by.Damage {
			targetIDs = append(targetIDs, id)
		}
		sort.Strings(targetIDs)
		for _, id := range targetIDs {
			to := by.Damage[id]
			fn(dealer, to.Member, to.HullDamage)
		}
	}
}
