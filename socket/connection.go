package socket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	b "fleetxp/binary"
	"fleetxp/types"

	"go.uber.org/zap"
)

type SessionConnection struct {
	conn   net.Conn
	connID uint32
	server *SessionServer

	mu            sync.RWMutex
	commander     string
	lastHeartbeat time.Time

	writeMu   sync.Mutex
	closeOnce sync.Once
}

func newSessionConnection(conn net.Conn, connID uint32, server *SessionServer) *SessionConnection {
	return &SessionConnection{
		conn:          conn,
		connID:        connID,
		server:        server,
		lastHeartbeat: time.Now(),
	}
}

func (s *SessionServer) handleTCPConnection(conn net.Conn) {
	defer conn.Close()

	if tcp, ok := conn.(*net.TCPConn); ok {
		tcp.SetNoDelay(true)
	}

	sc, ok := s.register(conn)
	if !ok {
		b.WriteFrame(conn, b.Message{
			Type:  types.LoginMessage,
			Error: "error.server.full",
		})
		return
	}
	s.metrics.SessionOpened()
	s.log.Info("new connection", zap.Uint32("conn", sc.connID), zap.String("remote", conn.RemoteAddr().String()))

	welcome, err := b.EncodeWelcomeMessage(&b.WelcomeMessage{ConnectionID: sc.connID, Text: "Welcome to fleetxp!"})
	if err == nil {
		sc.SendTCPMessage(b.Message{Type: types.SystemMessage, Data: welcome})
	}

	for {
		msg, err := b.ReadFrame(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				s.log.Debug("connection read ended", zap.Uint32("conn", sc.connID), zap.Error(err))
			}
			break
		}

		sc.touch()
		if !s.handleMessage(sc, msg) {
			break
		}
	}

	sc.handleDisconnect()
}

func (sc *SessionConnection) SendTCPMessage(msg b.Message) error {
	if sc == nil || sc.conn == nil {
		return fmt.Errorf("invalid connection")
	}
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()
	return b.WriteFrame(sc.conn, msg)
}

func (sc *SessionConnection) touch() {
	sc.mu.Lock()
	sc.lastHeartbeat = time.Now()
	sc.mu.Unlock()
}

func (sc *SessionConnection) lastSeen() time.Time {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.lastHeartbeat
}

func (sc *SessionConnection) Commander() string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.commander
}

func (sc *SessionConnection) isCommander(nickname string) bool {
	c := sc.Commander()
	return c != "" && strings.EqualFold(c, nickname)
}

func (sc *SessionConnection) close() {
	sc.closeOnce.Do(func() {
		sc.conn.Close()
	})
}

// handleDisconnect unregisters the session and saves the ledger when a commander leaves.
func (sc *SessionConnection) handleDisconnect() {
	sc.close()
	sc.server.unregister(sc)
	sc.server.metrics.SessionClosed()

	commander := sc.Commander()
	sc.server.log.Info("disconnected", zap.Uint32("conn", sc.connID), zap.String("commander", commander))
	if commander != "" {
		sc.server.Save(context.Background())
	}
}
