package report

import (
	"fleetxp/game/attribution"
	"fleetxp/game/combat"

	"go.uber.org/zap"
)

// Fanout forwards every report to each of its presenters in order.
type Fanout []attribution.Presenter

func (f Fanout) ReportGain(member *combat.Member, xp float64, qualifier string) {
	for _, p := range f {
		p.ReportGain(member, xp, qualifier)
	}
}

func (f Fanout) ReportCoalescedGain(members []*combat.Member, xp float64, qualifier string) {
	for _, p := range f {
		p.ReportCoalescedGain(members, xp, qualifier)
	}
}

// Log writes reports as structured log lines.
type Log struct {
	Logger *zap.Logger
}

func (l Log) ReportGain(member *combat.Member, xp float64, qualifier string) {
	l.Logger.Info("ship gained xp",
		zap.String("member", member.ID),
		zap.String("ship", member.ShipName),
		zap.Float64("xp", xp),
		zap.String("qualifier", qualifier),
	)
}

func (l Log) ReportCoalescedGain(members []*combat.Member, xp float64, qualifier string) {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	l.Logger.Info("ships gained xp",
		zap.Strings("members", ids),
		zap.Float64("xp", xp),
		zap.String("qualifier", qualifier),
	)
}
