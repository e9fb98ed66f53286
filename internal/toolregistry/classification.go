package toolregistry

import (
	"github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"
	"github.com/jbhoffman613/camel-prompt-injection/internal/value"
)

// ClassificationKind names one of the five return-shape categories below.
// Lists need no kind of their own: value.FromRaw labels every element of a
// returned list with the same capabilities as the list.
type ClassificationKind int

const (
	// ScalarConfirmation covers IDs, the current date, and other public
	// facts a tool confirms back: Tool(name, {TrustedToolSource}), Public.
	ScalarConfirmation ClassificationKind = iota
	// IdentityLookup covers identity/user-profile lookups: trusted source
	// User, non-public readers (the looked-up identity's own).
	IdentityLookup
	// Catalog covers read-only listings (hotels, flights, restaurants):
	// trusted source, Public readers.
	Catalog
	// UntrustedFreeText covers reviews, webpages, emails' bodies, file
	// contents, Slack messages: source is the producer, never
	// TrustedToolSource; readers constrained to participants.
	UntrustedFreeText
	// StructuredRecord covers records with their own participant list
	// (email, calendar event, cloud file, transaction, message): readers
	// computed from the record, source from its producer/owner.
	StructuredRecord
)

// ClassificationRule is the per-tool classification table entry (spec
// §4.6's "this classification is data-driven by a per-tool mapping").
// ParticipantsField/ProducerField name the keys the adapter reads out of
// the tool's raw map[string]any return value to build the reader set and
// producer source for UntrustedFreeText/StructuredRecord; both are ignored
// for ScalarConfirmation/IdentityLookup/Catalog.
type ClassificationRule struct {
	Kind              ClassificationKind
	ParticipantsField string // e.g. "recipients", "participants"
	ProducerField     string // e.g. "sender", "owner"
}

// Classifier builds a Classify function from a rule, usable directly as a
// ToolSpec.Classify.
func (r ClassificationRule) Classifier() Classifier {
	return func(toolName string, kwargs map[string]value.Value, raw any) capabilities.Capabilities {
		switch r.Kind {
		case ScalarConfirmation, Catalog:
			return capabilities.Tool(toolName, capabilities.FromPrincipal(capabilities.TrustedToolSource))
		case IdentityLookup:
			return capabilities.Capabilities{
				Sources: capabilities.NewSourceSet(capabilities.FromPrincipal(capabilities.User)),
				Readers: readersFrom(raw, r.ParticipantsField),
			}
		case UntrustedFreeText:
			return capabilities.Capabilities{
				Sources: capabilities.NewSourceSet(producerSource(raw, r.ProducerField)),
				Readers: readersFrom(raw, r.ParticipantsField),
			}
		case StructuredRecord:
			return capabilities.Capabilities{
				Sources: capabilities.NewSourceSet(producerSource(raw, r.ProducerField)),
				Readers: readersFrom(raw, r.ParticipantsField),
			}
		default:
			return capabilities.Tool(toolName)
		}
	}
}

// readersFrom builds a concrete reader set from a string or []string field
// of the tool's raw return value; missing or unrecognized shapes fall back
// to Public so an unclassifiable record never over-restricts by accident
// and is instead caught by whatever policy rule governs the tool that
// produced it.
func readersFrom(raw any, field string) capabilities.ReaderSet {
	m, ok := raw.(map[string]any)
	if !ok || field == "" {
		return capabilities.Public()
	}
	v, ok := m[field]
	if !ok {
		return capabilities.Public()
	}
	switch t := v.(type) {
	case string:
		return capabilities.Readers(t)
	case []any:
		ids := make([]string, 0, len(t))
		for _, it := range t {
			if s, ok := it.(string); ok {
				ids = append(ids, s)
			}
		}
		if len(ids) == 0 {
			return capabilities.Public()
		}
		return capabilities.Readers(ids...)
	default:
		return capabilities.Public()
	}
}

// producerSource resolves the named field to a Source, substituting User
// when the field names the authenticated principal (spec §4.6 "with a User
// substitution when the principal is the authenticated user").
func producerSource(raw any, field string) capabilities.Source {
	m, ok := raw.(map[string]any)
	if !ok || field == "" {
		return capabilities.FromPrincipal(capabilities.CaMeLPrincipal)
	}
	v, ok := m[field].(string)
	if !ok {
		return capabilities.FromPrincipal(capabilities.CaMeLPrincipal)
	}
	if v == "me" || v == "authenticated_user" {
		return capabilities.FromPrincipal(capabilities.User)
	}
	return capabilities.FromTool(v)
}
