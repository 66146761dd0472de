package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EntityKind tags the two variants of a faceted entity.
type EntityKind string

// Entity kinds.
const (
	KindElement      EntityKind = "element"
	KindRelationship EntityKind = "relationship"
)

// FacetKind selects which attribute bag of an entity a query projects.
type FacetKind string

// Facet kinds accepted by the query pipeline. FacetCombined projects the
// generic "facets" bag and is also accepted under the name "facets".
const (
	FacetNone     FacetKind = "none"
	FacetDynamic  FacetKind = "dynamic"
	FacetCore     FacetKind = "core"
	FacetCombined FacetKind = "combined"
)

// ParseFacetKind maps a user-supplied facet name to a FacetKind.
// An empty name means FacetNone.
func ParseFacetKind(s string) (FacetKind, error) {
	switch s {
	case "", "none":
		return FacetNone, nil
	case "dynamic", "dynamicFacets":
		return FacetDynamic, nil
	case "core", "coreFacets":
		return FacetCore, nil
	case "combined", "facets":
		return FacetCombined, nil
	default:
		return "", fmt.Errorf("%w: unknown facet kind %q", ErrInvalidInput, s)
	}
}

// Faceted is the capability shared by elements and relationships: typed core
// fields plus three open attribute bags.
type Faceted interface {
	Kind() EntityKind
	EntityID() string
	EntityType() string
	EntityNature() string
	Facet(kind FacetKind) map[string]any
}

// Attributes holds the fields common to every faceted entity.
type Attributes struct {
	ID            string
	Type          string
	Nature        string
	Name          string
	Version       int
	DynamicFacets map[string]any
	Facets        map[string]any
	// CoreFacets holds every top-level field that is not one of the typed
	// fields above, so unknown fields survive a decode/encode cycle.
	CoreFacets map[string]any

	// missing records the optional keys the decoded input did not carry, so
	// encoding leaves them out again. Zero means every key is written.
	missing optionalKeys
}

// optionalKeys is a set of the stored keys an entity may omit.
type optionalKeys uint8

const (
	optType optionalKeys = 1 << iota
	optNature
	optName
	optVersion
	optDynamicFacets
	optFacets
	optSourceID
	optTargetID
)

// EntityID returns the entity id.
func (a *Attributes) EntityID() string { return a.ID }

// EntityType returns the entity type.
func (a *Attributes) EntityType() string { return a.Type }

// EntityNature returns the entity nature.
func (a *Attributes) EntityNature() string { return a.Nature }

// Facet returns the attribute bag selected by kind. FacetNone returns nil.
func (a *Attributes) Facet(kind FacetKind) map[string]any {
	switch kind {
	case FacetDynamic:
		return a.DynamicFacets
	case FacetCore:
		return a.CoreFacets
	case FacetCombined:
		return a.Facets
	default:
		return nil
	}
}

// Element is a node of the model.
type Element struct {
	Attributes
}

// Kind implements Faceted.
func (e *Element) Kind() EntityKind { return KindElement }

// Relationship is a directed, typed edge between two elements. Source and
// target are not guaranteed to resolve to an element of the model.
type Relationship struct {
	Attributes
	SourceID string
	TargetID string
}

// Kind implements Faceted.
func (r *Relationship) Kind() EntityKind { return KindRelationship }

// Compile-time checks.
var (
	_ Faceted = (*Element)(nil)
	_ Faceted = (*Relationship)(nil)
)

// Top-level JSON keys that map onto typed fields.
const (
	keyID            = "id"
	keyType          = "type"
	keyNature        = "nature"
	keyName          = "name"
	keyVersion       = "version"
	keyDynamicFacets = "dynamicFacets"
	keyFacets        = "facets"
	keySourceID      = "sourceId"
	keyTargetID      = "targetId"
)

// UnmarshalJSON decodes an element, collecting unknown top-level fields into CoreFacets.
func (e *Element) UnmarshalJSON(data []byte) error {
	fields, err := decodeFields(data)
	if err != nil {
		return err
	}

	return e.Attributes.take(fields)
}

// MarshalJSON encodes an element back into its stored shape.
func (e *Element) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Attributes.flatten())
}

// Document returns the element in its stored shape as a generic JSON value.
// Nested facet values are shared with the element and must not be mutated.
func (e *Element) Document() map[string]any {
	return e.Attributes.flatten()
}

// UnmarshalJSON decodes a relationship, collecting unknown top-level fields into CoreFacets.
func (r *Relationship) UnmarshalJSON(data []byte) error {
	fields, err := decodeFields(data)
	if err != nil {
		return err
	}

	var missing optionalKeys

	for _, f := range []struct {
		key string
		bit optionalKeys
		dst *string
	}{
		{keySourceID, optSourceID, &r.SourceID},
		{keyTargetID, optTargetID, &r.TargetID},
	} {
		if _, ok := fields[f.key]; !ok {
			missing |= f.bit
		}

		if err := takeString(fields, f.key, f.dst); err != nil {
			return err
		}
	}

	if err := r.Attributes.take(fields); err != nil {
		return err
	}

	r.missing |= missing

	return nil
}

// MarshalJSON encodes a relationship back into its stored shape.
func (r *Relationship) MarshalJSON() ([]byte, error) {
	out := r.Attributes.flatten()
	if r.missing&optSourceID == 0 {
		out[keySourceID] = r.SourceID
	}

	if r.missing&optTargetID == 0 {
		out[keyTargetID] = r.TargetID
	}

	return json.Marshal(out)
}

func decodeFields(data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}

	if fields == nil {
		return nil, fmt.Errorf("entity must be a JSON object")
	}

	return fields, nil
}

// take consumes the typed keys from fields; whatever remains becomes CoreFacets.
// Facet values keep JSON numbers as json.Number so large integers survive.
func (a *Attributes) take(fields map[string]json.RawMessage) error {
	if err := takeString(fields, keyID, &a.ID); err != nil {
		return err
	}

	if a.ID == "" {
		return fmt.Errorf("entity is missing an id")
	}

	a.missing = 0

	for key, bit := range map[string]optionalKeys{
		keyType: optType, keyNature: optNature, keyName: optName,
		keyVersion: optVersion, keyDynamicFacets: optDynamicFacets, keyFacets: optFacets,
	} {
		if _, ok := fields[key]; !ok {
			a.missing |= bit
		}
	}

	for key, dst := range map[string]*string{keyType: &a.Type, keyNature: &a.Nature, keyName: &a.Name} {
		if err := takeString(fields, key, dst); err != nil {
			return err
		}
	}

	if raw, ok := fields[keyVersion]; ok {
		delete(fields, keyVersion)

		v, err := decodeVersion(raw)
		if err != nil {
			return fmt.Errorf("entity %s: version: %w", a.ID, err)
		}

		a.Version = v
	}

	var err error
	if a.DynamicFacets, err = takeMap(fields, keyDynamicFacets); err != nil {
		return fmt.Errorf("entity %s: %w", a.ID, err)
	}

	if a.Facets, err = takeMap(fields, keyFacets); err != nil {
		return fmt.Errorf("entity %s: %w", a.ID, err)
	}

	a.CoreFacets = make(map[string]any, len(fields))
	for k, raw := range fields {
		var v any
		if err := decodeValue(raw, &v); err != nil {
			return fmt.Errorf("entity %s: %s: %w", a.ID, k, err)
		}
		a.CoreFacets[k] = v
	}

	return nil
}

// flatten rebuilds the top-level object: core facets first, typed fields on
// top. Optional keys absent from the decoded input stay absent.
func (a *Attributes) flatten() map[string]any {
	out := make(map[string]any, len(a.CoreFacets)+7)
	for k, v := range a.CoreFacets {
		out[k] = v
	}

	out[keyID] = a.ID

	for _, f := range []struct {
		key string
		bit optionalKeys
		val any
	}{
		{keyType, optType, a.Type},
		{keyNature, optNature, a.Nature},
		{keyName, optName, a.Name},
		{keyVersion, optVersion, a.Version},
		{keyDynamicFacets, optDynamicFacets, orEmpty(a.DynamicFacets)},
		{keyFacets, optFacets, orEmpty(a.Facets)},
	} {
		if a.missing&f.bit == 0 {
			out[f.key] = f.val
		}
	}

	return out
}

// decodeValue unmarshals raw into v, keeping numbers as json.Number.
func decodeValue(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	return dec.Decode(v)
}

func takeString(fields map[string]json.RawMessage, key string, dst *string) error {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	delete(fields, key)

	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	if s != nil {
		*dst = *s
	}

	return nil
}

func takeMap(fields map[string]json.RawMessage, key string) (map[string]any, error) {
	raw, ok := fields[key]
	if !ok {
		return map[string]any{}, nil
	}
	delete(fields, key)

	var m map[string]any
	if err := decodeValue(raw, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}

	return orEmpty(m), nil
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}

	return m
}
