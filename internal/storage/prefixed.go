package storage

import (
	"context"
	"io"
	"strings"
)

// prefixedStore namespaces every key under a fixed prefix, letting several
// deployments share one bucket.
type prefixedStore struct {
	inner  ObjectStore
	prefix string
}

// WithPrefix wraps s so all keys live under prefix. An empty prefix
// returns s unchanged.
func WithPrefix(s ObjectStore, prefix string) ObjectStore {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return s
	}
	return &prefixedStore{inner: s, prefix: prefix + "/"}
}

func (p *prefixedStore) Put(ctx context.Context, key, contentType string, r io.Reader) (ObjectInfo, error) {
	info, err := p.inner.Put(ctx, p.prefix+key, contentType, r)
	if err != nil {
		return ObjectInfo{}, err
	}
	info.Key = key
	return info, nil
}

func (p *prefixedStore) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	rc, info, err := p.inner.Get(ctx, p.prefix+key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	info.Key = key
	return rc, info, nil
}

func (p *prefixedStore) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, p.prefix+key)
}

func (p *prefixedStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	infos, err := p.inner.List(ctx, p.prefix+prefix)
	if err != nil {
		return nil, err
	}
	for i := range infos {
		infos[i].Key = strings.TrimPrefix(infos[i].Key, p.prefix)
	}
	return infos, nil
}
