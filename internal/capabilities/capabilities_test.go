package capabilities_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"
)

func TestSourceTrust(t *testing.T) {
	require.True(t, capabilities.FromPrincipal(capabilities.User).Trusted())
	require.False(t, capabilities.FromPrincipal(capabilities.Principal("Webpage")).Trusted())

	trustedTool := capabilities.FromTool("get_date", capabilities.FromPrincipal(capabilities.TrustedToolSource))
	require.True(t, trustedTool.Trusted())

	emptyInnerTool := capabilities.FromTool("mystery")
	require.False(t, emptyInnerTool.Trusted())

	mixedTool := capabilities.FromTool("search", capabilities.FromPrincipal(capabilities.User), capabilities.FromPrincipal(capabilities.Principal("Webpage")))
	require.False(t, mixedTool.Trusted())
}

func TestReaderMeet(t *testing.T) {
	pub := capabilities.Public()
	a := capabilities.Readers("alice@example.com", "bob@example.com")
	b := capabilities.Readers("bob@example.com", "carol@example.com")

	require.True(t, pub.Meet(a).IsPublic() == false && equalSets(pub.Meet(a), a))
	require.True(t, equalSets(a.Meet(b), capabilities.Readers("bob@example.com")))
}

func TestCanRead(t *testing.T) {
	require.True(t, capabilities.CanRead(capabilities.Readers("alice@example.com"), capabilities.Public()))

	effective := capabilities.Readers("alice@example.com", "bob@example.com")
	require.True(t, capabilities.CanRead(capabilities.Readers("alice@example.com"), effective))
	require.False(t, capabilities.CanRead(capabilities.Readers("carol@example.com"), effective))
}

func TestSourceSetUnionDedupes(t *testing.T) {
	a := capabilities.NewSourceSet(capabilities.FromPrincipal(capabilities.User))
	b := capabilities.NewSourceSet(capabilities.FromPrincipal(capabilities.User), capabilities.FromPrincipal(capabilities.CaMeLPrincipal))
	union := a.Union(b)
	require.Equal(t, 2, union.Len())
}

func equalSets(a, b capabilities.ReaderSet) bool {
	if a.IsPublic() != b.IsPublic() {
		return false
	}
	if a.IsPublic() {
		return true
	}
	aIDs, bIDs := a.IDs(), b.IDs()
	if len(aIDs) != len(bIDs) {
		return false
	}
	seen := make(map[string]bool, len(aIDs))
	for _, id := range aIDs {
		seen[id] = true
	}
	for _, id := range bIDs {
		if !seen[id] {
			return false
		}
	}
	return true
}
