package toolregistry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"
	"github.com/jbhoffman613/camel-prompt-injection/internal/toolregistry"
	"github.com/jbhoffman613/camel-prompt-injection/internal/value"
)

func TestScalarConfirmationIsTrustedAndPublic(t *testing.T) {
	classify := toolregistry.ClassificationRule{Kind: toolregistry.ScalarConfirmation}.Classifier()
	caps := classify("get_current_day", nil, "2026-07-30")
	require.True(t, caps.Sources.Trusted())
	require.True(t, caps.Readers.IsPublic())
}

func TestIdentityLookupTrustsUserWithNonPublicReaders(t *testing.T) {
	classify := toolregistry.ClassificationRule{Kind: toolregistry.IdentityLookup, ParticipantsField: "owner"}.Classifier()
	raw := map[string]any{"owner": "alice@example.com"}
	caps := classify("get_profile", nil, raw)
	require.True(t, caps.Sources.Trusted())
	require.False(t, caps.Readers.IsPublic())
	require.ElementsMatch(t, []string{"alice@example.com"}, caps.Readers.IDs())
}

func TestUntrustedFreeTextNeverCarriesTrustedToolSource(t *testing.T) {
	classify := toolregistry.ClassificationRule{Kind: toolregistry.UntrustedFreeText, ProducerField: "author", ParticipantsField: "readers"}.Classifier()
	raw := map[string]any{"author": "reviewer_42", "readers": []any{"alice@example.com"}}
	caps := classify("read_review", nil, raw)
	require.False(t, caps.Sources.Trusted())
	for _, src := range caps.Sources.Items() {
		require.NotEqual(t, capabilities.TrustedToolSource, src.Principal())
	}
	require.ElementsMatch(t, []string{"alice@example.com"}, caps.Readers.IDs())
}

func TestStructuredRecordSubstitutesUserForAuthenticatedPrincipal(t *testing.T) {
	classify := toolregistry.ClassificationRule{Kind: toolregistry.StructuredRecord, ProducerField: "sender", ParticipantsField: "recipients"}.Classifier()
	raw := map[string]any{"sender": "me", "recipients": []any{"bob@example.com"}}
	caps := classify("get_email", nil, raw)
	require.Len(t, caps.Sources.Items(), 1)
	require.Equal(t, capabilities.User, caps.Sources.Items()[0].Principal())
}

func TestMissingParticipantsFieldFallsBackToPublic(t *testing.T) {
	classify := toolregistry.ClassificationRule{Kind: toolregistry.StructuredRecord, ProducerField: "sender"}.Classifier()
	raw := map[string]any{"sender": "notifications@example.com"}
	caps := classify("get_notification", nil, raw)
	require.True(t, caps.Readers.IsPublic())
}

func TestRegisterRejectsDuplicateToolName(t *testing.T) {
	reg := toolregistry.NewRegistry()
	spec := toolregistry.ToolSpec{Name: "get_balance", Fn: func(_ context.Context, _ map[string]any) (any, error) {
		return nil, nil
	}}
	require.NoError(t, reg.Register(spec))
	require.Error(t, reg.Register(spec))
}

func TestValueFromRawRoundTripsClassifiedCapabilities(t *testing.T) {
	classify := toolregistry.ClassificationRule{Kind: toolregistry.Catalog}.Classifier()
	caps := classify("search_hotels", nil, []any{"Hotel A", "Hotel B"})
	wrapped := value.FromRaw([]any{"Hotel A", "Hotel B"}, caps, nil)
	list, ok := wrapped.(*value.List)
	require.True(t, ok)
	require.Len(t, list.Items, 2)
	require.True(t, value.IsPublic(wrapped))
}
