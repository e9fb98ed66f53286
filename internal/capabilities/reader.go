package capabilities

// ReaderSet describes who may observe a value: either Public (everyone) or
// a concrete set of principal identifiers (email addresses, user handles).
type ReaderSet struct {
	public bool
	ids    map[string]struct{}
}

// Public returns the universal reader set.
func Public() ReaderSet { return ReaderSet{public: true} }

// Readers builds a concrete reader set from the given identifiers.
func Readers(ids ...string) ReaderSet {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return ReaderSet{ids: m}
}

// IsPublic reports whether this reader set is the universal set.
func (r ReaderSet) IsPublic() bool { return r.public }

// IDs returns the concrete reader identifiers; empty (and meaningless) if
// IsPublic is true.
func (r ReaderSet) IDs() []string {
	out := make([]string, 0, len(r.ids))
	for id := range r.ids {
		out = append(out, id)
	}
	return out
}

// Meet computes the confidentiality meet of two reader sets: Public acts as
// the identity element, otherwise the result is the intersection.
func (r ReaderSet) Meet(other ReaderSet) ReaderSet {
	switch {
	case r.public:
		return other
	case other.public:
		return r
	default:
		out := make(map[string]struct{})
		for id := range r.ids {
			if _, ok := other.ids[id]; ok {
				out[id] = struct{}{}
			}
		}
		return ReaderSet{ids: out}
	}
}

// Superset reports whether r contains every identifier in other. Only
// meaningful for concrete (non-public) sets; callers should check IsPublic
// first per the can_read rule in §4.1.
func (r ReaderSet) Superset(other ReaderSet) bool {
	if other.public {
		return r.public
	}
	for id := range other.ids {
		if _, ok := r.ids[id]; !ok {
			return false
		}
	}
	return true
}

// CanRead implements §4.1's can_read(R_candidates, v): true iff v's
// effective readers are Public, or R_candidates is contained in them.
func CanRead(candidates ReaderSet, effective ReaderSet) bool {
	if effective.IsPublic() {
		return true
	}
	return effective.Superset(candidates)
}
