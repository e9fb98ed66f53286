// Package capabilities implements the capability algebra: sources
// (who produced a value), readers (who may observe it), and the meet/join
// rules that let the interpreter propagate both through every operation.
package capabilities

import (
	"fmt"
	"sort"
	"strings"
)

// Principal enumerates the built-in, non-tool sources a value can carry.
type Principal string

const (
	User              Principal = "User"
	Assistant         Principal = "Assistant"
	CaMeLPrincipal    Principal = "CaMeL"
	TrustedToolSource Principal = "TrustedToolSource"
)

var trustedPrincipals = map[Principal]struct{}{
	User:              {},
	Assistant:         {},
	CaMeLPrincipal:    {},
	TrustedToolSource: {},
}

// Source is a single producer of data: either a built-in Principal or a
// Tool describing the tool that produced it and the sources it read.
type Source struct {
	principal Principal
	tool      *ToolSource
}

// ToolSource records a tool invocation as a data producer, along with the
// sources of whatever the tool itself read to produce its output.
type ToolSource struct {
	Name         string
	InnerSources []Source
}

// FromPrincipal builds a Source from one of the built-in principals.
func FromPrincipal(p Principal) Source { return Source{principal: p} }

// FromTool builds a Source describing a tool invocation.
func FromTool(name string, inner ...Source) Source {
	return Source{tool: &ToolSource{Name: name, InnerSources: inner}}
}

// IsTool reports whether this source is a tool source.
func (s Source) IsTool() bool { return s.tool != nil }

// Tool returns the underlying ToolSource, or nil if this is a principal.
func (s Source) Tool() *ToolSource { return s.tool }

// Principal returns the underlying principal; zero value if this is a tool source.
func (s Source) Principal() Principal { return s.principal }

// Trusted reports whether this source is trusted: a built-in trusted
// principal, or a Tool whose inner sources are non-empty and entirely
// trusted (transitively).
func (s Source) Trusted() bool {
	if s.tool != nil {
		if len(s.tool.InnerSources) == 0 {
			return false
		}
		for _, inner := range s.tool.InnerSources {
			if !inner.Trusted() {
				return false
			}
		}
		return true
	}
	_, ok := trustedPrincipals[s.principal]
	return ok
}

// Key returns a stable string identity for this source, used for set
// de-duplication and as a hashing input.
func (s Source) Key() string {
	if s.tool == nil {
		return "principal:" + string(s.principal)
	}
	inner := make([]string, len(s.tool.InnerSources))
	for i, in := range s.tool.InnerSources {
		inner[i] = in.Key()
	}
	sort.Strings(inner)
	return fmt.Sprintf("tool:%s[%s]", s.tool.Name, strings.Join(inner, ","))
}

func (s Source) String() string {
	if s.tool == nil {
		return string(s.principal)
	}
	inner := make([]string, len(s.tool.InnerSources))
	for i, in := range s.tool.InnerSources {
		inner[i] = in.String()
	}
	return fmt.Sprintf("Tool(%s, {%s})", s.tool.Name, strings.Join(inner, ", "))
}

// SourceSet is a de-duplicated, order-preserving collection of sources.
type SourceSet struct {
	order []string
	byKey map[string]Source
}

// NewSourceSet builds a SourceSet from the given sources, de-duplicating by Key.
func NewSourceSet(sources ...Source) SourceSet {
	ss := SourceSet{byKey: make(map[string]Source, len(sources))}
	for _, s := range sources {
		ss.Add(s)
	}
	return ss
}

// Add inserts a source into the set if not already present.
func (ss *SourceSet) Add(s Source) {
	if ss.byKey == nil {
		ss.byKey = make(map[string]Source)
	}
	key := s.Key()
	if _, ok := ss.byKey[key]; ok {
		return
	}
	ss.byKey[key] = s
	ss.order = append(ss.order, key)
}

// Union returns a new SourceSet containing every source from ss and other.
func (ss SourceSet) Union(other SourceSet) SourceSet {
	out := NewSourceSet(ss.Items()...)
	for _, s := range other.Items() {
		out.Add(s)
	}
	return out
}

// Items returns the sources in insertion order.
func (ss SourceSet) Items() []Source {
	out := make([]Source, 0, len(ss.order))
	for _, key := range ss.order {
		out = append(out, ss.byKey[key])
	}
	return out
}

// Len reports the number of distinct sources in the set.
func (ss SourceSet) Len() int { return len(ss.order) }

// Trusted reports whether every source in the set is trusted. An empty
// set is trusted vacuously (no untrusted producer exists).
func (ss SourceSet) Trusted() bool {
	for _, s := range ss.Items() {
		if !s.Trusted() {
			return false
		}
	}
	return true
}
