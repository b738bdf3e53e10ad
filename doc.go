// Package deepcopy provides deep copying of arbitrary object graphs with
// per-type strategy resolution and a concurrent strategy cache.
//
// deepcopy decides, for every runtime type it encounters, how instances of
// that type should be duplicated: shared by reference (identity), rejected
// (non-copyable), handled by a dedicated container copier, or walked
// reflectively field by field or element by element. The decision is made
// at most once per type and cached, so the analysis cost is paid on first
// contact only.
//
// Core components include:
//   - Pipeline: resolves and caches a Copier per reflect.Type
//   - Copier: a single strategy for duplicating values of one type
//   - Context: per-copy state preserving shared references and breaking cycles
//   - Store: a type-safe key-value store built on the pipeline (see store/)
//
// Key features include identity copying for immutable types, runtime
// registration of additional immutable types, a pluggable special-case
// factory, and a read-mostly locking discipline that keeps concurrent
// lookups cheap.
package deepcopy
