package repository

import "context"

type namespaced struct {
	next   Store
	prefix string
}

// Namespaced scopes every key of next under "device:<deviceID>:" so several
// devices can share one backing database.
func Namespaced(next Store, deviceID string) Store {
	return &namespaced{next: next, prefix: "device:" + deviceID + ":"}
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, error) {
	return n.next.Get(ctx, n.prefix+key)
}

func (n *namespaced) Put(ctx context.Context, key string, value []byte) error {
	return n.next.Put(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.next.Delete(ctx, n.prefix+key)
}
