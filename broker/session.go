package broker

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Session wraps a Transport with the gateway's reconnect policy: when a
// request fails because the link dropped, reconnect, re-authenticate, and
// retry the request exactly once. A second consecutive failure propagates to
// the caller. There is deliberately no retry loop beyond that.
type Session struct {
	transport Transport
	auth      func(ctx context.Context) error
	log       *zap.Logger

	reconnecting bool
}

// NewSession builds a session over the given transport. A nil logger is
// replaced with a no-op one.
func NewSession(t Transport, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{transport: t, log: log}
}

// OnReconnect registers the venue's authenticate hook, run after every
// reconnect (including the initial Open).
func (s *Session) OnReconnect(auth func(ctx context.Context) error) {
	s.auth = auth
}

// Open connects the transport and authenticates.
func (s *Session) Open(ctx context.Context) error {
	if err := s.transport.Connect(ctx); err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	if s.auth != nil {
		if err := s.auth(ctx); err != nil {
			return fmt.Errorf("authenticate: %w", err)
		}
	}
	return nil
}

// Request sends a payload, recovering once from a lost connection.
//
// Sessions are owned by a single engine loop, so the reentrancy guard is a
// plain bool: an authenticate hook issuing requests during recovery gets the
// raw, non-retrying path.
func (s *Session) Request(ctx context.Context, payload any) (any, error) {
	resp, err := s.transport.Send(ctx, payload)
	if err == nil || !errors.Is(err, ErrConnectionLost) || s.reconnecting {
		return resp, err
	}

	s.log.Warn("connection lost, retrying once", zap.Error(err))
	s.reconnecting = true
	defer func() { s.reconnecting = false }()

	if cerr := s.transport.Connect(ctx); cerr != nil {
		return nil, fmt.Errorf("reconnect: %w", cerr)
	}
	if s.auth != nil {
		if aerr := s.auth(ctx); aerr != nil {
			return nil, fmt.Errorf("re-authenticate: %w", aerr)
		}
	}
	return s.transport.Send(ctx, payload)
}
