// Package session tracks which refresh tokens are still live, keyed by the
// token's jti claim.
package session

import (
	"context"
	"time"
)

type Store interface {
	Save(ctx context.Context, tokenID, userID string, ttl time.Duration) error
	Exists(ctx context.Context, tokenID string) (bool, error)
	Revoke(ctx context.Context, tokenID string) error
}

// StatelessStore accepts every signed refresh token until it expires. Used
// when no Redis is configured; logout cannot revoke anything in this mode.
type StatelessStore struct{}

func NewStatelessStore() *StatelessStore {
	return &StatelessStore{}
}

func (StatelessStore) Save(context.Context, string, string, time.Duration) error { return nil }

func (StatelessStore) Exists(context.Context, string) (bool, error) { return true, nil }

func (StatelessStore) Revoke(context.Context, string) error { return nil }
