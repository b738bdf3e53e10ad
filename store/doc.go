// Package store provides a type-safe key-value store built on the
// deepcopy pipeline.
//
// The store keeps Go values with their concrete types preserved and uses
// the pipeline for every operation that needs reference isolation:
// Clone, CloneFrom, and CopyFrom all deep-copy entries so that no
// references are shared between stores. Values whose types the
// pipeline classifies as non-copyable surface deepcopy.ErrNotCopyable
// from those operations.
//
// Entries carry optional metadata (tags, properties, description) and a
// time-to-live, and types can be described as JSON Schema for validation
// and discovery.
package store
