// Package session holds the authenticated user and token pair for the current
// clipo session. The in-memory store is a write-through cache over a durable
// state file: every mutation lands on disk before it becomes observable in
// memory, and a fresh store hydrates itself from whatever the file contains.
package session
