package broker

import "context"

// Transport is the wire-level capability a venue adapter supplies: establish
// the underlying session and exchange payloads over it. Payload encoding is
// entirely the adapter's business.
//
// Send reports a broken link with an error wrapping ErrConnectionLost (which
// the session recovers from once) and functional/protocol failures with an
// error wrapping ErrRequest (never retried).
type Transport interface {
	Connect(ctx context.Context) error
	Send(ctx context.Context, payload any) (any, error)
}
