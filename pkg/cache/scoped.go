package cache

import "strings"

// ScopedKeyer namespaces the keys of another Keyer, so repositories or
// deployments sharing one cache never read each other's orders:
//
//	keyer := NewScopedKeyer(nil, "repo:linux") // "repo:linux:order:v1:<fp>"
type ScopedKeyer struct {
	inner Keyer
	scope string // always ends in ':'
}

// NewScopedKeyer scopes inner (the default keyer if nil). A ':' separator is
// appended to scope unless it already ends in one.
func NewScopedKeyer(inner Keyer, scope string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if !strings.HasSuffix(scope, ":") {
		scope += ":"
	}
	return &ScopedKeyer{inner: inner, scope: scope}
}

// OrderKey returns the scoped order key.
func (k *ScopedKeyer) OrderKey(fingerprint string) string {
	return k.scope + k.inner.OrderKey(fingerprint)
}

var _ Keyer = (*ScopedKeyer)(nil)
