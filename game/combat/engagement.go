package combat

import "github.com/google/uuid"

// EngagementResult is the immutable record of one finished battle.
type EngagementResult struct {
	ID        uuid.UUID
	PlayerWon bool
	Winner    *FleetResult
	Loser     *FleetResult
	Damage    *DamageData
	// PlayerFleet is every member of the player's fleet, deployed or not.
	PlayerFleet []*Member
}

// Sides returns the player's and the enemy's fleet results.
func (r *EngagementResult) Sides() (player, enemy *FleetResult) {
	if r.PlayerWon {
		return r.Winner, r.Loser
	}
	return r.Loser, r.Winner
}
