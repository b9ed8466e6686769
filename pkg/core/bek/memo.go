package bek

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/commitgraph/pkg/core/layout"
	"github.com/matzehuels/commitgraph/pkg/core/permanent"
	"github.com/matzehuels/commitgraph/pkg/errors"
)

// Store persists orders between processes. Load reports a miss with
// (nil, false, nil).
type Store interface {
	LoadOrder(ctx context.Context, key string) (*Order, bool, error)
	StoreOrder(ctx context.Context, key string, o *Order) error
}

// Memo computes the Bek order of one permanent graph at most once.
//
// Concurrent callers of Get share a single computation. The order is
// published only when the sort completes; a canceled sort leaves the memo
// empty and the next Get starts over.
type Memo struct {
	g       *permanent.Graph
	l       *layout.Layout
	ts      Timestamps
	store   Store
	key     string
	onError func(op string, err error)

	order atomic.Pointer[Order]
	group singleflight.Group
}

// NewMemo returns a memo for the Bek order of g.
func NewMemo(g *permanent.Graph, l *layout.Layout, ts Timestamps) *Memo {
	return &Memo{g: g, l: l, ts: ts}
}

// WithStore makes m consult store under key before sorting, and save the
// result there afterwards. Store failures only cost the cached copy.
func (m *Memo) WithStore(store Store, key string) *Memo {
	m.store = store
	m.key = key
	return m
}

// OnStoreError registers fn to receive store failures. op is "load" or
// "store". The sort proceeds regardless.
func (m *Memo) OnStoreError(fn func(op string, err error)) *Memo {
	m.onError = fn
	return m
}

func (m *Memo) storeFailed(op string, err error) {
	if m.onError != nil {
		m.onError(op, err)
	}
}

// Cached returns the order if it has been computed.
func (m *Memo) Cached() (*Order, bool) {
	o := m.order.Load()
	return o, o != nil
}

// Get returns the Bek order, computing it on first use.
func (m *Memo) Get(ctx context.Context) (*Order, error) {
	if o := m.order.Load(); o != nil {
		return o, nil
	}

	for {
		ch := m.group.DoChan("bek", func() (any, error) {
			if o := m.order.Load(); o != nil {
				return o, nil
			}
			o, err := m.compute(ctx)
			if err != nil {
				return nil, err
			}
			m.order.Store(o)
			return o, nil
		})

		select {
		case <-ctx.Done():
			return nil, errors.Canceled(ctx, "bek sort")
		case res := <-ch:
			if res.Err == nil {
				return res.Val.(*Order), nil
			}
			// Another caller's context canceled the shared sort.
			if errors.Is(res.Err, errors.ErrCodeCanceled) && ctx.Err() == nil {
				continue
			}
			return nil, res.Err
		}
	}
}

func (m *Memo) compute(ctx context.Context) (*Order, error) {
	if m.store != nil {
		o, ok, err := m.store.LoadOrder(ctx, m.key)
		switch {
		case err != nil:
			m.storeFailed("load", err)
		case ok && o.Len() == m.g.NodesCount():
			return o, nil
		}
	}
	o, err := Sort(ctx, m.g, m.l, m.ts)
	if err != nil {
		return nil, err
	}
	if m.store != nil {
		if err := m.store.StoreOrder(ctx, m.key, o); err != nil {
			m.storeFailed("store", err)
		}
	}
	return o, nil
}
