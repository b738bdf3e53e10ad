package store

import "time"

// Metadata holds descriptive information attached to a store entry.
type Metadata struct {
	// Tags are labels for grouping and lookup.
	Tags []string
	// Properties are arbitrary named values.
	Properties map[string]interface{}
	// Description is a human-readable note about the entry.
	Description string
	// CreatedAt is when the metadata was created.
	CreatedAt time.Time
	// UpdatedAt is when the metadata was last modified.
	UpdatedAt time.Time
}

// NewMetadata creates empty metadata with timestamps set to now.
func NewMetadata() *Metadata {
	now := time.Now()
	return &Metadata{
		Tags:       []string{},
		Properties: make(map[string]interface{}),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// AddTag adds a tag if not already present.
func (m *Metadata) AddTag(tag string) {
	for _, t := range m.Tags {
		if t == tag {
			return
		}
	}
	m.Tags = append(m.Tags, tag)
	m.UpdatedAt = time.Now()
}

// RemoveTag removes a tag if present.
func (m *Metadata) RemoveTag(tag string) {
	for i, t := range m.Tags {
		if t == tag {
			m.Tags = append(m.Tags[:i], m.Tags[i+1:]...)
			m.UpdatedAt = time.Now()
			return
		}
	}
}

// HasTag reports whether the tag is present.
func (m *Metadata) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasAllTags reports whether every tag is present.
func (m *Metadata) HasAllTags(tags []string) bool {
	for _, tag := range tags {
		if !m.HasTag(tag) {
			return false
		}
	}
	return true
}

// HasAnyTag reports whether at least one tag is present.
func (m *Metadata) HasAnyTag(tags []string) bool {
	for _, tag := range tags {
		if m.HasTag(tag) {
			return true
		}
	}
	return false
}

// SetProperty stores a named property value.
func (m *Metadata) SetProperty(key string, value interface{}) {
	if m.Properties == nil {
		m.Properties = make(map[string]interface{})
	}
	m.Properties[key] = value
	m.UpdatedAt = time.Now()
}

// GetProperty returns a named property value.
func (m *Metadata) GetProperty(key string) (interface{}, bool) {
	v, ok := m.Properties[key]
	return v, ok
}

// clone returns an independent copy of the metadata. Property values are
// copied shallowly; they are treated as opaque annotations here, and the
// store's deep-copy paths run them through the pipeline separately when
// isolation matters.
func (m *Metadata) clone() *Metadata {
	if m == nil {
		return nil
	}
	out := &Metadata{
		Tags:        append([]string{}, m.Tags...),
		Properties:  make(map[string]interface{}, len(m.Properties)),
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	for k, v := range m.Properties {
		out.Properties[k] = v
	}
	return out
}
