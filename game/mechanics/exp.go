package mechanics

import "math"

// WeightedDamage converts a fraction of a target's hull into a reward score.
// Overkill is clamped to the full hull, and the target is valued at no less
// than lowerBound of its deployment points so cheap hulls still count.
func WeightedDamage(damageFraction, deploymentCost, deploymentPoints, lowerBound float64) float64 {
	if damageFraction <= 0 {
		return 0
	}
	return math.Min(damageFraction, 1.0) * math.Max(deploymentCost, lowerBound*deploymentPoints)
}

// DamageFraction returns hull damage as a fraction of effective hit points.
// Targets without positive hit points yield zero.
func DamageFraction(hullDamage, effectiveHitpoints float64) float64 {
	if effectiveHitpoints <= 0 || hullDamage <= 0 {
		return 0
	}
	return hullDamage / effectiveHitpoints
}

const (
	// Base XP required to leave level 1
	levelBaseXP = 1000.0
	// Growth factor (higher = steeper progression)
	levelGrowthFactor = 1.5
)

// ShipLevel calculates a ship's level from its lifetime XP with logarithmic progression
func ShipLevel(xp float64) int {
	if xp < levelBaseXP {
		return 1
	}

	// level = log(xp/base) / log(growth) + 2
	level := int(math.Log(xp/levelBaseXP)/math.Log(levelGrowthFactor)) + 2
	if level < 1 {
		return 1
	}
	return level
}

// XPForLevel returns required XP for a specific level
func XPForLevel(level int) float64 {
	if level <= 1 {
		return 0
	}
	return levelBaseXP * math.Pow(levelGrowthFactor, float64(level-2))
}
