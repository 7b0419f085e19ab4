// Package store defines the persistence boundary of the application: a
// small key-value contract every local backend implements, plus the
// progress and sync-queue stores built on top of it.
//
// The progress aggregate is logically single-writer. Grading, known-status
// toggling and session-stat updates all mutate disjoint parts of the same
// persisted structure, so every mutation goes through Mutate, a
// read-merge-write under a store-level lock; a naive load-then-overwrite
// would clobber unrelated concurrent changes.
package store
