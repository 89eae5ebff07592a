package hue

import (
	"fmt"
	"strings"
)

// Kind is the type of a bridge resource a Ref points at.
type Kind string

const (
	KindLight Kind = "light"
	KindGroup Kind = "group"
)

// Ref is a "kind:id" reference to a light or group.
type Ref struct {
	Kind Kind
	ID   string
}

// ParseRef parses "light:3" or "group:1".
// ok is false when the string does not have exactly two parts, the kind is unknown or the id is empty.
func ParseRef(s string) (Ref, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || parts[1] == "" {
		return Ref{}, false
	}

	kind := Kind(parts[0])
	switch kind {
	case KindLight, KindGroup:
		return Ref{Kind: kind, ID: parts[1]}, true
	default:
		return Ref{}, false
	}
}

// ParseRefs parses every string, dropping malformed ones.
func ParseRefs(values []string) []Ref {
	refs := make([]Ref, 0, len(values))
	for _, v := range values {
		if ref, ok := ParseRef(v); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// String returns the "kind:id" form
func (r Ref) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}

// StatePath is the v1 endpoint that accepts a state payload for the resource.
func (r Ref) StatePath() string {
	if r.Kind == KindGroup {
		return fmt.Sprintf("/groups/%s/action", r.ID)
	}
	return fmt.Sprintf("/lights/%s/state", r.ID)
}
