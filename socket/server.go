package socket

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"sync"
	"time"

	"fleetxp/game/attribution"
	"fleetxp/ledger"
	"fleetxp/metrics"
	"fleetxp/models"

	"go.uber.org/zap"
)

const (
	defaultInactivityTimeout = 30 * time.Second
	defaultAutosaveInterval  = 60 * time.Second
	publishTimeout           = 5 * time.Second
)

// Persister saves the ledger and the engagement log.
type Persister interface {
	Save(ctx context.Context, t *ledger.Table) (int, error)
	HasEngagement(ctx context.Context, engagementID string) (bool, error)
	RecordEngagement(ctx context.Context, rec *models.EngagementRecord) error
}

// AwardPublisher forwards awards to downstream consumers.
type AwardPublisher interface {
	PublishAward(ctx context.Context, award *attribution.Award) error
}

type Options struct {
	MaxConnections    int
	AutosaveInterval  time.Duration
	InactivityTimeout time.Duration
}

// SessionServer accepts commander sessions, runs attribution for every
// engagement result they send and replies with the XP report.
type SessionServer struct {
	engine    *attribution.Engine
	table     *ledger.Table
	persister Persister
	publisher AwardPublisher
	metrics   *metrics.Metrics
	log       *zap.Logger
	opts      Options

	connections map[uint32]*SessionConnection
	mu          sync.RWMutex
	// engineMu serializes engagements: one battle at a time. It also
	// guards settled.
	engineMu sync.Mutex
	// settled holds the ids of engagements paid out since start, so a
	// resent report is refused even when recording it failed.
	settled map[string]struct{}
	// saveMu keeps autosave and session-end saves from interleaving.
	saveMu sync.Mutex
}

func NewSessionServer(engine *attribution.Engine, table *ledger.Table, persister Persister, publisher AwardPublisher, m *metrics.Metrics, log *zap.Logger, opts Options) *SessionServer {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxConnections <= 0 {
		opts.MaxConnections = 100
	}
	if opts.AutosaveInterval <= 0 {
		opts.AutosaveInterval = defaultAutosaveInterval
	}
	if opts.InactivityTimeout <= 0 {
		opts.InactivityTimeout = defaultInactivityTimeout
	}
	return &SessionServer{
		engine:      engine,
		table:       table,
		persister:   persister,
		publisher:   publisher,
		metrics:     m,
		log:         log.With(zap.String("component", "socket")),
		opts:        opts,
		connections: make(map[uint32]*SessionConnection),
		settled:     make(map[string]struct{}),
	}
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *SessionServer) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on l until ctx is cancelled, then closes every
// session and saves the ledger one last time.
func (s *SessionServer) Serve(ctx context.Context, l net.Listener) error {
	s.log.Info("TCP server is running", zap.String("addr", l.Addr().String()))

	go s.autoSaveRoutine(ctx)
	go s.cleanupInactiveConnections(ctx)

	go func() {
		<-ctx.Done()
		l.Close()
	}()

	var wg sync.WaitGroup
	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.log.Warn("error accepting connection", zap.Error(err))
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleTCPConnection(conn)
		}()
	}

	s.closeAll()
	wg.Wait()
	s.Save(context.Background())
	return nil
}

func (s *SessionServer) register(conn net.Conn) (*SessionConnection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.connections) >= s.opts.MaxConnections {
		return nil, false
	}
	var connID uint32
	for {
		connID = rand.Uint32()
		if _, exists := s.connections[connID]; !exists {
			break
		}
	}
	sc := newSessionConnection(conn, connID, s)
	s.connections[connID] = sc
	return sc, true
}

func (s *SessionServer) unregister(sc *SessionConnection) {
	s.mu.Lock()
	delete(s.connections, sc.connID)
	s.mu.Unlock()
}

func (s *SessionServer) snapshot() []*SessionConnection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*SessionConnection, 0, len(s.connections))
	for _, sc := range s.connections {
		out = append(out, sc)
	}
	return out
}

// ConnectionCount returns the number of open sessions.
func (s *SessionServer) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// claimCommander logs sc in as nickname unless another session already uses
// that name. The lookup and the assignment share one hold of s.mu.
func (s *SessionServer) claimCommander(sc *SessionConnection, nickname string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.connections {
		if other != sc && other.isCommander(nickname) {
			return false
		}
	}
	sc.mu.Lock()
	sc.commander = nickname
	sc.mu.Unlock()
	return true
}

func (s *SessionServer) closeAll() {
	for _, sc := range s.snapshot() {
		sc.close()
	}
}

// Save writes every ledger entry changed since the last save.
func (s *SessionServer) Save(ctx context.Context) {
	if s.persister == nil {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	written, err := s.persister.Save(ctx, s.table)
	if err != nil {
		s.log.Error("error during ledger save", zap.Error(err))
		return
	}
	if written > 0 {
		s.log.Info("ledger saved", zap.Int("ships", written))
	}
}

func (s *SessionServer) autoSaveRoutine(ctx context.Context) {
	ticker := time.NewTicker(s.opts.AutosaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Save(ctx)
		}
	}
}

func (s *SessionServer) cleanupInactiveConnections(ctx context.Context) {
	ticker := time.NewTicker(s.opts.InactivityTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.dropInactive(now)
		}
	}
}

// dropInactive closes sessions that sent nothing within the inactivity timeout.
// Their read loops then exit and run the usual disconnect path.
func (s *SessionServer) dropInactive(now time.Time) int {
	dropped := 0
	for _, sc := range s.snapshot() {
		if now.Sub(sc.lastSeen()) > s.opts.InactivityTimeout {
			s.log.Info("dropping inactive connection", zap.Uint32("conn", sc.connID))
			sc.close()
			dropped++
		}
	}
	return dropped
}
