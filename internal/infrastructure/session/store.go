package session

import (
	"context"
	"time"
)

// RevocationStore remembers logged-out session ids until their tokens would
// have expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

var (
	_ RevocationStore = (*MemoryStore)(nil)
	_ RevocationStore = (*RedisStore)(nil)
)

const keyPrefix = "oticas:session:revoked:"
