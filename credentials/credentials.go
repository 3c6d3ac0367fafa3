// Package credentials holds the process-wide record of the last-known
// OAuth token set. The store is an explicit, injectable component: one
// instance per process, passed to whichever components need it. It is
// read by outgoing gateway calls and written only by token-lifecycle
// operations; it is never persisted across restarts.
package credentials

import (
	"sync"
	"time"
)

// Source records which operation produced the current token set.
type Source string

const (
	SourceEnv          Source = "env"
	SourceOAuthCode    Source = "oauth-code"
	SourceOAuthRefresh Source = "oauth-refresh"
	SourceManualSet    Source = "manual-set"
	SourceManualClear  Source = "manual-clear"
)

// Set is one OAuth token set. ExpireAt is derived at assignment time:
// now + ExpiresIn, or zero when ExpiresIn is unknown.
type Set struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	TokenType    string    `json:"tokenType,omitempty"`
	ExpiresIn    int       `json:"expiresIn,omitempty"`
	ExpireAt     time.Time `json:"expireAt,omitzero"`
	Scope        []string  `json:"scope,omitempty"`
	Source       Source    `json:"source"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Expired reports whether the set carries a known, passed expiry.
func (s Set) Expired() bool {
	return !s.ExpireAt.IsZero() && time.Now().After(s.ExpireAt)
}

type Store struct {
	mu  sync.RWMutex
	set Set
}

func NewStore() *Store {
	return &Store{}
}

// Seed installs the configuration-provided token at process start.
// A seed with no access token leaves the store empty.
func (st *Store) Seed(accessToken, refreshToken string) {
	if accessToken == "" && refreshToken == "" {
		return
	}
	st.Put(Set{AccessToken: accessToken, RefreshToken: refreshToken}, SourceEnv)
}

// Put replaces the stored set wholesale, stamping Source, UpdatedAt and
// the derived ExpireAt.
func (st *Store) Put(set Set, source Source) Set {
	now := time.Now().UTC()
	set.Source = source
	set.UpdatedAt = now
	if set.ExpiresIn > 0 {
		set.ExpireAt = now.Add(time.Duration(set.ExpiresIn) * time.Second)
	} else {
		set.ExpireAt = time.Time{}
	}
	st.mu.Lock()
	st.set = set
	st.mu.Unlock()
	return set
}

// Clear resets the store to an empty set with source manual-clear.
func (st *Store) Clear() Set {
	return st.Put(Set{}, SourceManualClear)
}

// Snapshot returns a copy of the current set.
func (st *Store) Snapshot() Set {
	st.mu.RLock()
	defer st.mu.RUnlock()
	set := st.set
	if len(st.set.Scope) > 0 {
		set.Scope = append([]string(nil), st.set.Scope...)
	}
	return set
}
