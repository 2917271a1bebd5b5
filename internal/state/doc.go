// Package state implements the simple persistent tool-group stores:
// shared context, reminders, workflows, learning notes, and teams.
//
// Each group is one versioned JSON document on the durable store.
// These are mechanical key-value and list mutations with no concurrency
// hazard — the interesting lifecycle machinery lives in internal/dispatch.
package state

const schemaVersion = 1
