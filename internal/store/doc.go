// Package store persists projects and segments in SQLite.
//
// The store is the durable source of truth for the orchestrator: segment
// status, in-flight provider job identifiers, and artifact references all
// live here so a crashed daemon can resume polling from the persisted state.
// Status transitions that guard against double submission use atomic
// compare-and-set updates rather than in-memory locks.
package store
