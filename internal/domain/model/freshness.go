package model

import "time"

// FreshnessPolicy configures when cached data for a scope is considered
// stale enough to warrant a remote refresh.
type FreshnessPolicy struct {
	// TTL is the age after which synced data is stale. Zero or negative
	// means always refresh.
	TTL time.Duration

	// ForceRefresh bypasses the TTL check entirely.
	ForceRefresh bool

	// RespectOffline does not influence the refresh decision; it tells the
	// caller that, should the refresh fail, stale local data is acceptable
	// to serve (flagged as such) instead of propagating the error.
	RespectOffline bool
}

// ShouldRefresh decides whether a read for the given scope must trigger a
// remote fetch. It is a pure function of its inputs: a nil state (never
// synced), a forced refresh, or a non-positive TTL always refresh; otherwise
// the state's age is compared against the TTL.
func ShouldRefresh(state *SyncState, policy FreshnessPolicy, now time.Time) bool {
	if policy.ForceRefresh {
		return true
	}
	if state == nil || state.LastSyncedAt.IsZero() {
		return true
	}
	if policy.TTL <= 0 {
		return true
	}
	return now.Sub(state.LastSyncedAt) >= policy.TTL
}
