package service

import "sync/atomic"

// Registry holds the live ServiceTable snapshot behind an atomic
// pointer. Only the main task (core/bus) calls Mutate; any number of
// processors may call Load concurrently and hold onto the result for
// as long as they like; an old snapshot is never mutated in place,
// so a reader's view never changes underneath it ("old snapshots
// remain valid to concurrent readers").
type Registry[M any] struct {
	table atomic.Pointer[ServiceTable[M]]
}

// NewRegistry returns a Registry holding an empty ServiceTable.
func NewRegistry[M any]() *Registry[M] {
	r := &Registry[M]{}
	r.table.Store(NewServiceTable[M]())
	return r
}

// Load returns the current snapshot.
func (r *Registry[M]) Load() *ServiceTable[M] {
	return r.table.Load()
}

// Mutate clones the current snapshot, applies edit to the clone, then
// publishes it with an atomic store, returning the newly published
// snapshot. Callers must serialize their own calls to Mutate (in
// practice only the main task's single-threaded receive loop calls
// this), since two concurrent Mutate calls could otherwise both clone
// the same base and one edit would be lost.
func (r *Registry[M]) Mutate(edit func(*ServiceTable[M])) *ServiceTable[M] {
	next := r.table.Load().Clone()
	edit(next)
	r.table.Store(next)
	return next
}
