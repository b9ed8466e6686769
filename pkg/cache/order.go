package cache

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/matzehuels/commitgraph/pkg/core/bek"
	"github.com/matzehuels/commitgraph/pkg/observability"
)

const orderKeyType = "order"

// OrderStore persists Bek orders in a [Cache] as zstd-compressed payloads.
type OrderStore struct {
	cache Cache
	ttl   time.Duration
}

// NewOrderStore returns a store that keeps orders in c for ttl.
func NewOrderStore(c Cache, ttl time.Duration) *OrderStore {
	if c == nil {
		c = NullCache{}
	}
	return &OrderStore{cache: c, ttl: ttl}
}

// LoadOrder returns the order under key. Corrupt entries are deleted and
// reported as misses together with an error wrapping [ErrCorrupt].
func (s *OrderStore) LoadOrder(ctx context.Context, key string) (*bek.Order, bool, error) {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, orderKeyType)
		return nil, false, nil
	}

	o, err := decodeOrder(raw)
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, orderKeyType)
		_ = s.cache.Delete(ctx, key)
		return nil, false, err
	}
	observability.Cache().OnCacheHit(ctx, orderKeyType)
	return o, true, nil
}

// StoreOrder saves o under key.
func (s *OrderStore) StoreOrder(ctx context.Context, key string, o *bek.Order) error {
	raw, err := encodeOrder(o)
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, orderKeyType, len(raw))
	return nil
}

func encodeOrder(o *bek.Order) ([]byte, error) {
	plain, err := o.MarshalBinary()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := enc.Write(plain); err != nil {
		enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeOrder(raw []byte) (*bek.Order, error) {
	dec, err := zstd.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	defer dec.Close()
	plain, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	o := new(bek.Order)
	if err := o.UnmarshalBinary(plain); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return o, nil
}

var _ bek.Store = (*OrderStore)(nil)
