/*
Package session implements calculator session management and persistence orchestration.

It serializes concurrent access to a session's display state, both within a
process (ref-counted per-session mutexes) and across replicas (an optional
ports.DistributedLocker), on top of any ports.StateStore.
*/
package session
