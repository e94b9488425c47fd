package socket

import (
	"context"
	"errors"
	"strings"

	b "fleetxp/binary"
	"fleetxp/game/attribution"
	"fleetxp/game/combat"
	"fleetxp/models"
	"fleetxp/report"
	"fleetxp/types"

	"go.uber.org/zap"
)

// handleMessage dispatches one frame. It returns false when the session should end.
func (s *SessionServer) handleMessage(sc *SessionConnection, msg *b.Message) bool {
	switch msg.Type {
	case types.LoginMessage:
		sc.handleLogin(msg.Data)
	case types.EngagementResultMessage:
		sc.handleEngagementResult(msg.Data)
	case types.ShipXPRequestMessage:
		sc.handleShipXPRequest(msg.Data)
	case types.PingPongMessage:
		sc.SendTCPMessage(*msg)
	case types.DisconnectMessage:
		return false
	default:
		sc.SendTCPMessage(b.Message{
			Type:  types.UnknownMessage,
			Error: "error.message.unknown",
		})
	}
	return true
}

func (sc *SessionConnection) handleLogin(data []byte) {
	loginRequest, err := b.DecodeLoginMessage(data)
	if err != nil {
		sc.SendTCPMessage(b.Message{
			Type:  types.LoginMessage,
			Error: "error.request.invalid",
		})
		return
	}

	if err := loginRequest.Validate(); err != nil {
		sc.SendTCPMessage(b.Message{
			Type:  types.LoginMessage,
			Error: err.Error(),
		})
		return
	}

	nickname := strings.TrimSpace(loginRequest.Nickname)
	if !sc.server.claimCommander(sc, nickname) {
		sc.SendTCPMessage(b.Message{
			Type:  types.LoginMessage,
			Error: "error.commander.already_connected",
		})
		return
	}

	sc.server.log.Info("commander logged in", zap.Uint32("conn", sc.connID), zap.String("commander", nickname))
	sc.SendTCPMessage(b.Message{
		Type: types.LoginMessage,
		Data: data,
	})
}

// handleEngagementResult runs attribution for one battle and replies with one
// XPReport frame per paragraph, followed by an EngagementResult acknowledgement
// carrying the engagement id and the ships that now carry the XP tracker.
func (sc *SessionConnection) handleEngagementResult(data []byte) {
	commander := sc.Commander()
	if commander == "" {
		sc.SendTCPMessage(b.Message{
			Type:  types.UnauthorizedMessage,
			Error: "error.unauthorized",
		})
		return
	}

	s := sc.server
	result, err := combat.DecodeReport(data)
	if err != nil {
		s.log.Warn("invalid engagement report", zap.Uint32("conn", sc.connID), zap.Error(err))
		sc.SendTCPMessage(b.Message{
			Type:  types.EngagementResultMessage,
			Error: "error.engagement.invalid",
		})
		return
	}

	dialog := report.NewDialog()
	presenter := report.Fanout{dialog, report.Log{Logger: s.log}}

	ctx := context.Background()
	award, err := s.settle(ctx, result, presenter, commander)
	switch {
	case errors.Is(err, errDuplicateEngagement):
		s.log.Warn("engagement already settled", zap.Uint32("conn", sc.connID), zap.Stringer("engagement", result.ID))
		sc.SendTCPMessage(b.Message{
			Type:  types.EngagementResultMessage,
			Error: "error.engagement.duplicate",
		})
		return
	case err != nil:
		s.log.Error("error checking engagement", zap.Stringer("engagement", result.ID), zap.Error(err))
		sc.SendTCPMessage(b.Message{
			Type:  types.EngagementResultMessage,
			Error: "error.engagement.unavailable",
		})
		return
	}

	s.metrics.ObserveAward(award)

	if award != nil && s.publisher != nil {
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		if err := s.publisher.PublishAward(pubCtx, award); err != nil {
			s.log.Error("error publishing award", zap.String("engagement", award.EngagementID), zap.Error(err))
		}
		cancel()
	}

	for _, p := range dialog.Paragraphs() {
		payload, err := b.EncodeXPReport(&b.XPReport{Text: p.Text, Highlights: p.Highlights})
		if err != nil {
			s.log.Warn("error encoding xp report", zap.Error(err))
			continue
		}
		sc.SendTCPMessage(b.Message{Type: types.XPReportMessage, Data: payload})
	}

	ack := &b.EngagementAck{EngagementID: result.ID.String()}
	if award != nil {
		for _, tr := range award.Tracked {
			ack.Tracked = append(ack.Tracked, b.TrackedShip{MemberID: tr.MemberID, LoadoutID: tr.LoadoutID, Cloned: tr.Cloned})
		}
	}
	payload, err := b.EncodeEngagementAck(ack)
	if err != nil {
		s.log.Error("error encoding engagement ack", zap.Stringer("engagement", result.ID), zap.Error(err))
		sc.SendTCPMessage(b.Message{
			Type:  types.EngagementResultMessage,
			Error: "error.engagement.ack",
		})
		return
	}
	sc.SendTCPMessage(b.Message{Type: types.EngagementResultMessage, Data: payload})
}

var errDuplicateEngagement = errors.New("engagement already settled")

// settle pays out result at most once per engagement id and records it.
// The check, the payout and the record all happen under engineMu.
func (s *SessionServer) settle(ctx context.Context, result *combat.EngagementResult, presenter attribution.Presenter, commander string) (*attribution.Award, error) {
	s.engineMu.Lock()
	defer s.engineMu.Unlock()

	id := result.ID.String()
	if _, ok := s.settled[id]; ok {
		return nil, errDuplicateEngagement
	}
	if s.persister != nil {
		seen, err := s.persister.HasEngagement(ctx, id)
		if err != nil {
			return nil, err
		}
		if seen {
			s.settled[id] = struct{}{}
			return nil, errDuplicateEngagement
		}
	}

	award := s.engine.Process(result, presenter)
	if award == nil {
		return nil, nil
	}
	s.settled[id] = struct{}{}

	if s.persister != nil {
		rec := &models.EngagementRecord{
			EngagementID: award.EngagementID,
			Commander:    commander,
			Contributors: len(award.CombatXP),
			Civilians:    len(award.Civilians),
			CombatXP:     award.TotalCombatXP,
			NonCombatXP:  award.NonCombatXP,
		}
		if err := s.persister.RecordEngagement(ctx, rec); err != nil {
			s.log.Error("error recording engagement", zap.String("engagement", award.EngagementID), zap.Error(err))
		}
	}
	return award, nil
}

func (sc *SessionConnection) handleShipXPRequest(data []byte) {
	if sc.Commander() == "" {
		sc.SendTCPMessage(b.Message{
			Type:  types.UnauthorizedMessage,
			Error: "error.unauthorized",
		})
		return
	}

	req, err := b.DecodeShipXPRequest(data)
	if err != nil {
		sc.SendTCPMessage(b.Message{
			Type:  types.ShipXPMessage,
			Error: "error.request.invalid",
		})
		return
	}

	entry, ok := sc.server.table.Get(req.MemberID)
	if !ok {
		sc.SendTCPMessage(b.Message{
			Type:  types.ShipXPMessage,
			Error: "error.ship.not_found",
		})
		return
	}

	payload, err := b.EncodeShipXP(&b.ShipXP{MemberID: req.MemberID, XP: entry.XP})
	if err != nil {
		sc.SendTCPMessage(b.Message{
			Type:  types.ShipXPMessage,
			Error: "error.request.invalid",
		})
		return
	}
	sc.SendTCPMessage(b.Message{Type: types.ShipXPMessage, Data: payload})
}
