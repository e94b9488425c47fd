package attribution

import (
	"sort"

	"fleetxp/game/combat"
	"fleetxp/game/mechanics"
)

// DamageTable holds contributor -> target -> weighted damage.
type DamageTable map[string]map[string]float64

// Clone returns a deep copy of the table.
func (t DamageTable) Clone() DamageTable {
	out := make(DamageTable, len(t))
	for contributor, row := range t {
		copied := make(map[string]float64, len(row))
		for target, score := range row {
			copied[target] = score
		}
		out[contributor] = copied
	}
	return out
}

// Contributors returns the row keys in a stable order.
func (t DamageTable) Contributors() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WeightFunc turns a hull damage fraction on target into a weighted score.
type WeightFunc func(damageFraction float64, target *combat.Member) float64

// NewWeightFunc values targets at their deployment cost, but never below
// lowerBound times their deployment points.
func NewWeightFunc(lowerBound float64) WeightFunc {
	return func(damageFraction float64, target *combat.Member) float64 {
		return mechanics.WeightedDamage(damageFraction, target.DeploymentCost, target.DeploymentPoints, lowerBound)
	}
}

type idSet map[string]struct{}

func newIDSet(ids ...string) idSet {
	s := make(idSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s idSet) has(id string) bool {
	_, ok := s[id]
	return ok
}

// Aggregate builds the weighted damage table for eligible contributors
// against eligible targets. Every eligible dealer gets a row, even when it
// only hit ineligible targets.
func Aggregate(damage *combat.DamageData, contributors, targets []string, weight WeightFunc) DamageTable {
	table := make(DamageTable)
	if damage == nil {
		return table
	}
	eligibleContributors := newIDSet(contributors...)
	eligibleTargets := newIDSet(targets...)

	for _, dealer := range damage.Dealers() {
		if !eligibleContributors.has(dealer.ID) {
			continue
		}
		row := make(map[string]float64)
		table[dealer.ID] = row

		by, _ := damage.DealtBy(dealer.ID)
		for targetID, to := range by.Damage {
			if !eligibleTargets.has(targetID) {
				continue
			}
			hp := to.Member.EffectiveHitpoints()
			if hp <= 0 {
				continue
			}
			row[targetID] += weight(mechanics.DamageFraction(to.HullDamage, hp), to.Member)
		}
	}
	return table
}

// Fold moves every sub-unit row of table into its owner's row, adding
// scores per target, and drops the sub-unit row. An owner without a row
// gets one. The input table is left untouched.
func Fold(table DamageTable, owners OwnerTable) DamageTable {
	out := table.Clone()
	for _, subUnit := range owners.subUnits() {
		owner := owners[subUnit]
		if owner == subUnit {
			continue
		}
		row, ok := out[subUnit]
		if ok {
			ownerRow, exists := out[owner]
			if !exists {
				ownerRow = make(map[string]float64, len(row))
				out[owner] = ownerRow
			}
			for target, score := range row {
				ownerRow[target] += score
			}
		}
		delete(out, subUnit)
	}
	return out
}

// MinContributions computes the floor credited for any positive hit on each target.
func MinContributions(targets []*combat.Member, fraction float64, weight WeightFunc) map[string]float64 {
	floors := make(map[string]float64, len(targets))
	for _, target := range targets {
		if target == nil {
			continue
		}
		floors[target.ID] = weight(fraction, target)
	}
	return floors
}

// Flatten reduces each contributor's row to one score: the sum over targets
// of max(score, floor). Non-positive scores are skipped and never floored.
func Flatten(table DamageTable, floors map[string]float64) map[string]float64 {
	totals := make(map[string]float64, len(table))
	for _, contributor := range table.Contributors() {
		row := table[contributor]
		targets := make([]string, 0, len(row))
		for target := range row {
			targets = append(targets, target)
		}
		sort.Strings(targets)

		total := 0.0
		for _, target := range targets {
			score := row[target]
			if score <= 0 {
				continue
			}
			total += max(score, floors[target])
		}
		totals[contributor] = total
	}
	return totals
}
