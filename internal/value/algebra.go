package value

import "github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"

// cyclable reports whether a value's Kind can participate in a reference
// cycle. Only mutable containers and class instances are implemented as
// pointers that can be reached from their own dependency graph (spec §9);
// every other kind is built bottom-up from already-finished values and
// cannot reference itself.
func cyclable(k Kind) bool {
	switch k {
	case KindList, KindDict, KindSet, KindClassInstance:
		return true
	default:
		return false
	}
}

func visit(v Value, visited map[any]bool) bool {
	if !cyclable(v.Kind()) {
		return false
	}
	if visited[v] {
		return true
	}
	visited[v] = true
	return false
}

// AllSources computes the transitive union of sources over v and every
// dependency reachable from it, cycle-guarded per spec §4.1/§9.
func AllSources(v Value) capabilities.SourceSet {
	return allSources(v, map[any]bool{})
}

func allSources(v Value, visited map[any]bool) capabilities.SourceSet {
	if visit(v, visited) {
		return capabilities.NewSourceSet()
	}
	out := v.Capabilities().Sources
	for _, dep := range v.Dependencies() {
		out = out.Union(allSources(dep, visited))
	}
	return out
}

// AllReaders computes the meet of v's own readers with the all-readers of
// every transitive dependency, cycle-guarded. A cycle contributes nothing
// further (meet with nothing leaves the accumulator unchanged).
func AllReaders(v Value) capabilities.ReaderSet {
	return allReaders(v, map[any]bool{})
}

func allReaders(v Value, visited map[any]bool) capabilities.ReaderSet {
	if visit(v, visited) {
		return capabilities.Public()
	}
	out := v.Capabilities().Readers
	for _, dep := range v.Dependencies() {
		out = out.Meet(allReaders(dep, visited))
	}
	return out
}

// IsPublic reports whether v's effective readers resolve to Public.
func IsPublic(v Value) bool { return AllReaders(v).IsPublic() }

// IsTrusted reports whether every source in v's effective source set is
// trusted (§4.1 is_trusted).
func IsTrusted(v Value) bool { return AllSources(v).Trusted() }

// CanRead reports whether the candidate reader set is permitted to observe
// v (§4.1 can_read).
func CanRead(candidates capabilities.ReaderSet, v Value) bool {
	return capabilities.CanRead(candidates, AllReaders(v))
}
