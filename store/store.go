package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/objgraph/deepcopy"
)

var (
	// ErrNotFound is returned when a key is not present.
	ErrNotFound = errors.New("store: key not found")
	// ErrExpired is returned when a key's TTL has elapsed.
	ErrExpired = errors.New("store: key expired")
	// ErrTypeMismatch is returned when the stored type does not match the
	// requested type.
	ErrTypeMismatch = errors.New("store: type mismatch")
)

// entry is a stored value with its captured concrete type.
type entry struct {
	typ       reflect.Type
	value     any
	expiresAt *time.Time
	metadata  *Metadata
}

// expired reports whether the entry's TTL has elapsed.
func (e entry) expired() bool {
	return e.expiresAt != nil && time.Now().After(*e.expiresAt)
}

// KVStore is a threadsafe, type-aware in-memory store. All reference
// isolation (Clone, CopyFrom) goes through a deepcopy.Pipeline.
type KVStore struct {
	mu     sync.RWMutex
	data   map[string]entry
	copier *deepcopy.Pipeline
}

// StoreOption configures a KVStore.
type StoreOption func(*KVStore)

// WithCopier sets the pipeline used for deep-copy operations. Defaults to
// deepcopy.Default().
func WithCopier(p *deepcopy.Pipeline) StoreOption {
	return func(s *KVStore) {
		if p != nil {
			s.copier = p
		}
	}
}

// NewKVStore constructs an empty store.
func NewKVStore(opts ...StoreOption) *KVStore {
	s := &KVStore{
		data:   make(map[string]entry),
		copier: deepcopy.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stores any Go value under key, capturing its concrete type.
func (s *KVStore) Put(key string, value any) error {
	return s.PutWithTTLAndMetadata(key, value, 0, nil)
}

// PutWithMetadata stores a value with metadata.
func (s *KVStore) PutWithMetadata(key string, value any, metadata *Metadata) error {
	return s.PutWithTTLAndMetadata(key, value, 0, metadata)
}

// PutWithTTL stores a value with a time-to-live. A ttl of 0 or less means
// the entry never expires.
func (s *KVStore) PutWithTTL(key string, value any, ttl time.Duration) error {
	return s.PutWithTTLAndMetadata(key, value, ttl, nil)
}

// PutWithTTLAndMetadata stores a value with both TTL and metadata.
// Existing metadata is preserved unless new metadata is provided.
func (s *KVStore) PutWithTTLAndMetadata(key string, value any, ttl time.Duration, metadata *Metadata) error {
	if key == "" {
		return errors.New("store: key cannot be empty")
	}

	var typ reflect.Type
	if value != nil {
		typ = reflect.TypeOf(value)
	}

	var expiresAt *time.Time
	if ttl > 0 {
		exp := time.Now().Add(ttl)
		expiresAt = &exp
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	meta := metadata
	if meta == nil {
		if existing, ok := s.data[key]; ok && existing.metadata != nil {
			meta = existing.metadata
			meta.UpdatedAt = time.Now()
		}
	}

	s.data[key] = entry{typ: typ, value: value, expiresAt: expiresAt, metadata: meta}
	return nil
}

// Get retrieves a value of type T for the given key. Interface types are
// satisfied by any stored value whose concrete type implements them;
// concrete types require an exact match.
func Get[T any](s *KVStore, key string) (T, error) {
	var zero T
	if key == "" {
		return zero, errors.New("store: key cannot be empty")
	}

	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return zero, ErrNotFound
	}
	if e.expired() {
		s.Delete(key)
		return zero, ErrExpired
	}

	want := reflect.TypeOf((*T)(nil)).Elem()

	if want.Kind() == reflect.Interface {
		if e.typ == nil || !e.typ.Implements(want) {
			return zero, fmt.Errorf("%w: wanted interface %v, got %v", ErrTypeMismatch, want, e.typ)
		}
		result, ok := e.value.(T)
		if !ok {
			return zero, fmt.Errorf("%w: %T does not satisfy %v", ErrTypeMismatch, e.value, want)
		}
		return result, nil
	}

	if e.typ != want {
		return zero, fmt.Errorf("%w: wanted %v, got %v", ErrTypeMismatch, want, e.typ)
	}
	result, ok := e.value.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %T is not %v", ErrTypeMismatch, e.value, want)
	}
	return result, nil
}

// GetOrDefault retrieves a value of type T, falling back to defaultValue
// when the key is missing or expired.
func GetOrDefault[T any](s *KVStore, key string, defaultValue T) (T, error) {
	value, err := Get[T](s, key)
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrExpired) {
		return defaultValue, nil
	}
	return value, err
}

// GetCopy retrieves an independent deep copy of the value stored under
// key, so mutations of the result never leak back into the store.
func GetCopy[T any](s *KVStore, key string) (T, error) {
	var zero T
	value, err := Get[T](s, key)
	if err != nil {
		return zero, err
	}

	out, err := s.copier.Copy(value)
	if err != nil {
		return zero, err
	}
	if out == nil {
		return zero, nil
	}
	return out.(T), nil
}

// Delete removes a key from the store.
func (s *KVStore) Delete(key string) bool {
	if key == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		delete(s.data, key)
		return true
	}
	return false
}

// Clear removes all keys from the store.
func (s *KVStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]entry)
}

// ListKeys returns all live keys.
func (s *KVStore) ListKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.data))
	for k, e := range s.data {
		if e.expired() {
			continue
		}
		out = append(out, k)
	}
	return out
}

// Count returns the number of live entries.
func (s *KVStore) Count() int {
	return len(s.ListKeys())
}

// ListTypes returns the set of concrete types currently stored.
func (s *KVStore) ListTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[reflect.Type]struct{}{}
	out := []string{}
	for _, e := range s.data {
		if e.expired() || e.typ == nil {
			continue
		}
		if _, ok := seen[e.typ]; ok {
			continue
		}
		seen[e.typ] = struct{}{}
		out = append(out, e.typ.String())
	}
	return out
}

// KeysByType returns all keys whose stored value has type T.
func KeysByType[T any](s *KVStore) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := reflect.TypeOf((*T)(nil)).Elem()
	keys := []string{}
	for k, e := range s.data {
		if e.expired() {
			continue
		}
		if e.typ == want {
			keys = append(keys, k)
		}
	}
	return keys
}

// GetMetadata returns the metadata for a key, creating empty metadata for
// entries that have none.
func (s *KVStore) GetMetadata(key string) (*Metadata, error) {
	if key == "" {
		return nil, errors.New("store: key cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	if e.expired() {
		delete(s.data, key)
		return nil, ErrExpired
	}

	if e.metadata == nil {
		e.metadata = NewMetadata()
		s.data[key] = e
	}
	return e.metadata, nil
}

// SetMetadata replaces the metadata for a key.
func (s *KVStore) SetMetadata(key string, metadata *Metadata) error {
	if key == "" {
		return errors.New("store: key cannot be empty")
	}
	if metadata == nil {
		return errors.New("store: metadata cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok {
		return ErrNotFound
	}
	if e.expired() {
		delete(s.data, key)
		return ErrExpired
	}

	e.metadata = metadata
	s.data[key] = e
	return nil
}

// AddTag adds a tag to the metadata for a key.
func (s *KVStore) AddTag(key, tag string) error {
	meta, err := s.GetMetadata(key)
	if err != nil {
		return err
	}
	meta.AddTag(tag)
	return nil
}

// HasTag reports whether a key's metadata has the tag.
func (s *KVStore) HasTag(key, tag string) (bool, error) {
	meta, err := s.GetMetadata(key)
	if err != nil {
		return false, err
	}
	return meta.HasTag(tag), nil
}

// FindKeysByTag returns all keys tagged with tag.
func (s *KVStore) FindKeysByTag(tag string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for k, e := range s.data {
		if e.expired() {
			continue
		}
		if e.metadata != nil && e.metadata.HasTag(tag) {
			keys = append(keys, k)
		}
	}
	return keys
}

// GetTypeSchema returns a JSON Schema representation of the stored
// value's type.
func (s *KVStore) GetTypeSchema(key string) (interface{}, error) {
	if key == "" {
		return nil, errors.New("store: key cannot be empty")
	}

	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if e.expired() {
		s.Delete(key)
		return nil, ErrExpired
	}
	if e.typ == nil {
		return nil, fmt.Errorf("store: key %q holds nil", key)
	}
	return TypeToSchema(e.typ), nil
}

// TypeToSchema converts a reflect.Type to a JSON schema map.
func TypeToSchema(t reflect.Type) interface{} {
	instance := reflect.New(t).Interface()
	reflector := jsonschema.Reflector{
		ExpandedStruct:            true,
		DoNotReference:            true,
		AllowAdditionalProperties: false,
	}
	schema := reflector.Reflect(instance)

	data, err := json.Marshal(schema)
	if err != nil {
		return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
	}
	var schemaMap map[string]interface{}
	if err := json.Unmarshal(data, &schemaMap); err != nil {
		return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
	}
	if _, exists := schemaMap["type"]; !exists {
		schemaMap["type"] = "object"
	}
	if _, exists := schemaMap["properties"]; !exists {
		schemaMap["properties"] = map[string]interface{}{}
	}
	return schemaMap
}

// Clone creates a new KVStore with deep copies of all live entries.
// The returned store shares no references with the original. Entries
// whose types the pipeline refuses to copy cause an error naming the key.
func (s *KVStore) Clone() (*KVStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := &KVStore{
		data:   make(map[string]entry, len(s.data)),
		copier: s.copier,
	}
	for key, e := range s.data {
		if e.expired() {
			continue
		}
		ce, err := s.copyEntry(e)
		if err != nil {
			return nil, fmt.Errorf("store: clone %q: %w", key, err)
		}
		out.data[key] = ce
	}
	return out, nil
}

// CloneFrom creates a new KVStore with all entries copied from source.
// A nil source yields an empty store.
func CloneFrom(source *KVStore) (*KVStore, error) {
	if source == nil {
		return NewKVStore(), nil
	}
	return source.Clone()
}

// CopyFrom deep-copies all live entries from source into this store,
// skipping keys that already exist. It returns the number of entries
// copied.
func (s *KVStore) CopyFrom(source *KVStore) (int, error) {
	if source == nil {
		return 0, errors.New("store: source store is nil")
	}
	if source == s {
		// Every key already exists; locking source and s would also
		// deadlock on the shared mutex.
		return 0, nil
	}

	source.mu.RLock()
	defer source.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := 0
	for key, e := range source.data {
		if e.expired() {
			continue
		}
		if _, exists := s.data[key]; exists {
			continue
		}
		ce, err := source.copyEntry(e)
		if err != nil {
			return copied, fmt.Errorf("store: copy %q: %w", key, err)
		}
		s.data[key] = ce
		copied++
	}
	return copied, nil
}

// CopyFromWithOverwrite deep-copies all live entries from source into this
// store, overwriting entries with the same keys. It returns the number of
// entries copied and the number overwritten.
func (s *KVStore) CopyFromWithOverwrite(source *KVStore) (copied, overwritten int, err error) {
	if source == nil {
		return 0, 0, errors.New("store: source store is nil")
	}
	if source == s {
		// Overwriting a store with copies of itself is a no-op, and the
		// shared mutex cannot be taken twice.
		return 0, 0, nil
	}

	source.mu.RLock()
	defer source.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range source.data {
		if e.expired() {
			continue
		}
		_, exists := s.data[key]

		ce, cerr := source.copyEntry(e)
		if cerr != nil {
			return copied, overwritten, fmt.Errorf("store: copy %q: %w", key, cerr)
		}
		s.data[key] = ce

		if exists {
			overwritten++
		} else {
			copied++
		}
	}
	return copied, overwritten, nil
}

// copyEntry produces an isolated copy of an entry through the pipeline.
// Metadata property values are copied through the pipeline as well so the
// clone cannot reach into the original's annotations.
func (s *KVStore) copyEntry(e entry) (entry, error) {
	valueCopy, err := s.copier.Copy(e.value)
	if err != nil {
		return entry{}, err
	}

	meta := e.metadata.clone()
	if meta != nil {
		for k, v := range meta.Properties {
			pc, err := s.copier.Copy(v)
			if err != nil {
				return entry{}, fmt.Errorf("metadata property %q: %w", k, err)
			}
			meta.Properties[k] = pc
		}
	}

	return entry{
		typ:       e.typ,
		value:     valueCopy,
		expiresAt: e.expiresAt,
		metadata:  meta,
	}, nil
}
