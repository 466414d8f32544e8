package ports

import "context"

// SecretStore is a durable keyed store. Get reports a missing key with
// domain.ErrKeyNotFound.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
