package repository

import "context"

// KeyValueStore is a synchronous string store in the spirit of browser
// localStorage: whole values are read and written by key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Ping(ctx context.Context) error
}
