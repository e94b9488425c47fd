package attribution

import (
	"sort"

	"fleetxp/game/combat"
	"fleetxp/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// TrackerMod marks a ship that carries XP.
	TrackerMod = "xp_tracker"

	CombatQualifier    = "from combat."
	NonCombatQualifier = "due to being civilian ships or having no weapons equipped"
)

// Settings are the already validated constants the engine reads.
type Settings struct {
	// MinContributionFraction is the hull fraction credited for any positive hit.
	MinContributionFraction float64
	XPGainMultiplier        float64
	// NonCombatXPFraction of the combat XP pool is given to every civilian ship.
	NonCombatXPFraction float64
	// TargetValueLowerBound is the fraction of deployment points a target is worth at minimum.
	TargetValueLowerBound float64
	GiveXPToDisabledShips bool
	OnlyGiveXPForKills    bool
}

// Ledger stores lifetime XP per member.
type Ledger interface {
	XP(memberID string) float64
	// GiveXP adds amount to the member's XP, creating the entry if needed.
	GiveXP(memberID string, amount float64)
}

// Presenter announces XP gains to the player.
type Presenter interface {
	ReportGain(member *combat.Member, xp float64, qualifier string)
	ReportCoalescedGain(members []*combat.Member, xp float64, qualifier string)
}

// Award summarizes what one engagement paid out.
type Award struct {
	EngagementID string
	// Scores are the flattened weighted damage per contributor.
	Scores map[string]float64
	// CombatXP holds the XP paid to each contributor with a positive score.
	CombatXP      map[string]float64
	TotalCombatXP float64
	// NonCombatXP is the flat bonus paid to each civilian ship.
	NonCombatXP float64
	Civilians   []string
	// Tracked lists members that received the tracker mod during this engagement.
	Tracked []TrackedShip
}

// TrackedShip names the loadout that now carries the tracker mod. When the
// member flew a stock loadout, LoadoutID is the id of the fresh clone.
type TrackedShip struct {
	MemberID  string
	LoadoutID uuid.UUID
	Cloned    bool
}

// ContributorIDs returns the ids that received combat XP, sorted.
func (a *Award) ContributorIDs() []string {
	ids := make([]string, 0, len(a.CombatXP))
	for id := range a.CombatXP {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Engine attributes engagement damage to player ships and pays out XP.
type Engine struct {
	ledger   Ledger
	settings Settings
	weight   WeightFunc
	log      *zap.Logger
}

func NewEngine(ledger Ledger, settings Settings, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		ledger:   ledger,
		settings: settings,
		weight:   NewWeightFunc(settings.TargetValueLowerBound),
		log:      logger.With(zap.String("component", "attribution")),
	}
}

func (e *Engine) Settings() Settings {
	return e.settings
}

// Process runs attribution for one finished engagement. It returns nil when
// the player never deployed anything, in which case nothing is touched.
// presenter may be nil.
func (e *Engine) Process(result *combat.EngagementResult, presenter Presenter) *Award {
	if result == nil {
		return nil
	}
	player, enemy := result.Sides()
	// Nobody deployed (e.g. a second-in-command handled pursuit): no damage data.
	if player == nil || len(player.AllEverDeployed) == 0 {
		e.log.Debug("no player ships deployed, skipping", zap.Stringer("engagement", result.ID))
		return nil
	}

	carriers := CarrierTable(player.AllEverDeployed)
	modules := ModuleTable(player.AllEverDeployed, result.Damage.Dealers())

	raw := Aggregate(result.Damage, e.eligibleContributors(player), e.eligibleTargets(enemy), e.weight)
	// Carriers first: a wing folded into its ship can then follow that ship
	// into a larger hull if the ship is itself a module.
	folded := Fold(Fold(raw, carriers), modules)
	floors := MinContributions(enemy.Members(), e.settings.MinContributionFraction, e.weight)
	scores := Flatten(folded, floors)

	e.log.Debug("attribution tables built",
		zap.Stringer("engagement", result.ID),
		zap.Int("carrier_links", len(carriers)),
		zap.Int("module_links", len(modules)),
		zap.Int("raw_rows", len(raw)),
		zap.Int("folded_rows", len(folded)),
	)

	award := e.distribute(result, scores, presenter)

	e.log.Info("engagement attributed",
		zap.Stringer("engagement", result.ID),
		zap.Int("contributors", len(award.CombatXP)),
		zap.Float64("combat_xp", award.TotalCombatXP),
		zap.Int("civilians", len(award.Civilians)),
		zap.Float64("non_combat_xp", award.NonCombatXP),
	)
	return award
}

func (e *Engine) eligibleContributors(player *combat.FleetResult) []string {
	if e.settings.GiveXPToDisabledShips {
		return player.MemberIDs()
	}
	return player.MemberIDs(types.OutcomeDeployed, types.OutcomeRetreated)
}

func (e *Engine) eligibleTargets(enemy *combat.FleetResult) []string {
	if e.settings.OnlyGiveXPForKills {
		return enemy.MemberIDs(types.OutcomeDestroyed, types.OutcomeDisabled)
	}
	return enemy.MemberIDs()
}

func (e *Engine) distribute(result *combat.EngagementResult, scores map[string]float64, presenter Presenter) *Award {
	award := &Award{
		EngagementID: result.ID.String(),
		Scores:       scores,
		CombatXP:     make(map[string]float64, len(scores)),
	}

	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		score := scores[id]
		if score <= 0 {
			continue
		}
		gain := score * e.settings.XPGainMultiplier
		e.ledger.GiveXP(id, gain)
		award.CombatXP[id] = gain
		award.TotalCombatXP += gain
	}

	award.NonCombatXP = award.TotalCombatXP * e.settings.NonCombatXPFraction
	var civilians []*combat.Member
	for _, member := range result.PlayerFleet {
		if member == nil {
			continue
		}
		if score, ok := scores[member.ID]; ok && presenter != nil {
			presenter.ReportGain(member, score*e.settings.XPGainMultiplier, CombatQualifier)
		}
		if member.Civilian {
			if award.NonCombatXP > 0 {
				e.ledger.GiveXP(member.ID, award.NonCombatXP)
			}
			civilians = append(civilians, member)
			award.Civilians = append(award.Civilians, member.ID)
		}
		if tracked, ok := e.attachTracker(member); ok {
			award.Tracked = append(award.Tracked, tracked)
		}
	}
	if presenter != nil && len(civilians) > 0 {
		presenter.ReportCoalescedGain(civilians, award.NonCombatXP, NonCombatQualifier)
	}
	return award
}

// attachTracker adds the tracker mod to a member that has XP, cloning a
// stock loadout first so the shared template stays untouched.
func (e *Engine) attachTracker(member *combat.Member) (TrackedShip, bool) {
	if member.Loadout == nil || e.ledger.XP(member.ID) <= 0 {
		return TrackedShip{}, false
	}
	if member.Loadout.HasPermaMod(TrackerMod) {
		return TrackedShip{}, false
	}
	cloned := member.Loadout.Stock
	if cloned {
		member.SetLoadout(member.Loadout.Clone())
	}
	member.Loadout.AddPermaMod(TrackerMod)
	return TrackedShip{MemberID: member.ID, LoadoutID: member.Loadout.ID, Cloned: cloned}, true
}
