// Package domain contains the core entities of the review system: the
// vocabulary items being studied, their per-item scheduling state, the
// persisted progress aggregate, and the sync actions replayed to the
// remote. It is independent of any storage or delivery mechanism.
package domain
