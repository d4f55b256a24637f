package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// CacheKey is the shared key builder instance.
var CacheKey = NewCacheKeyStruct()

// SessionSnapshotKey returns the key holding a candidate's serialized
// interview session snapshot.
func (r *CacheKeyStruct) SessionSnapshotKey(candidateID string) string {
	return fmt.Sprintf("interview:candidate:%s:snapshot", candidateID)
}

// IncompleteSessionsKey returns the set of candidate IDs whose snapshots are
// incomplete and have at least one recorded answer. Backs the startup
// recovery query.
func (r *CacheKeyStruct) IncompleteSessionsKey() string {
	return "interview:incomplete_sessions"
}

// SessionsIndexKey returns the set of all candidate IDs with a stored
// snapshot, completed or not. Backs the full reset action.
func (r *CacheKeyStruct) SessionsIndexKey() string {
	return "interview:sessions"
}
