package capabilities

// Capabilities bundles a value's own sources and readers. It is the label
// stored on every runtime value; effective (all_sources/all_readers) values
// additionally fold in the label of every transitive dependency — see
// package value for that traversal, since it needs to walk the dependency
// graph that this package is deliberately unaware of.
type Capabilities struct {
	Sources SourceSet
	Readers ReaderSet
}

// CaMeL returns the "neutral" capability label for interpreter-synthesized
// values: sources = {CaMeL}, readers = Public.
func CaMeL() Capabilities {
	return Capabilities{
		Sources: NewSourceSet(FromPrincipal(CaMeLPrincipal)),
		Readers: Public(),
	}
}

// Default returns the pre-annotation label used for freshly evaluated
// literals: no sources, Public readers.
func Default() Capabilities {
	return Capabilities{
		Sources: NewSourceSet(),
		Readers: Public(),
	}
}

// Tool returns the capability label the tool adapter assigns by default to
// a tool's return value before per-tool classification narrows it further.
func Tool(name string, inner ...Source) Capabilities {
	return Capabilities{
		Sources: NewSourceSet(FromTool(name, inner...)),
		Readers: Public(),
	}
}

// Merge combines two capability labels: sources union, readers meet. Used
// when an operation's own label must additionally reflect the receiver's
// or an argument's own (non-effective) label.
func (c Capabilities) Merge(other Capabilities) Capabilities {
	return Capabilities{
		Sources: c.Sources.Union(other.Sources),
		Readers: c.Readers.Meet(other.Readers),
	}
}
