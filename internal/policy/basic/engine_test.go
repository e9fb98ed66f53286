package basic_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"
	"github.com/jbhoffman613/camel-prompt-injection/internal/policy"
	"github.com/jbhoffman613/camel-prompt-injection/internal/policy/basic"
	"github.com/jbhoffman613/camel-prompt-injection/internal/value"
)

func alwaysAllow(string, map[string]value.Value) policy.Decision {
	return policy.Allow()
}

func untrusted() value.Value {
	return value.NewStrFromRaw("injected", capabilities.Capabilities{
		Sources: capabilities.NewSourceSet(capabilities.FromTool("search")),
		Readers: capabilities.Public(),
	}, nil)
}

func TestDefaultDenyWhenNoRuleMatches(t *testing.T) {
	e := basic.New(nil, nil, 0, 0)
	d, err := e.Check(context.Background(), "send_money", nil, nil)
	require.NoError(t, err)
	require.False(t, d.Allowed)
}

func TestDeniesOnNonPublicDependency(t *testing.T) {
	e := basic.New([]policy.Rule{{Pattern: "send_money", Decide: alwaysAllow}}, nil, 0, 0)
	restricted := value.NewStrFromRaw("x", capabilities.Capabilities{Readers: capabilities.Readers("alice@example.com")}, nil)
	d, err := e.Check(context.Background(), "send_money", nil, []value.Value{restricted})
	require.NoError(t, err)
	require.False(t, d.Allowed)
}

func TestRuleMatchWins(t *testing.T) {
	e := basic.New([]policy.Rule{
		{Pattern: "send_*", Decide: policy.RequireTrustedArg("recipient")},
	}, nil, 0, 0)

	trusted := value.NewStrFromRaw("bob@example.com", capabilities.Default(), nil)
	d, err := e.Check(context.Background(), "send_money", map[string]value.Value{"recipient": trusted}, nil)
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = e.Check(context.Background(), "send_money", map[string]value.Value{"recipient": untrusted()}, nil)
	require.NoError(t, err)
	require.False(t, d.Allowed)
}

func TestGlobPatternMatchesToolFamily(t *testing.T) {
	e := basic.New([]policy.Rule{{Pattern: "update_*", Decide: alwaysAllow}}, nil, 0, 0)
	d, err := e.Check(context.Background(), "update_contact", nil, nil)
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestNoSideEffectSet(t *testing.T) {
	e := basic.New(nil, []string{"get_balance"}, 0, 0)
	require.True(t, e.NoSideEffect("get_balance"))
	require.False(t, e.NoSideEffect("send_money"))
}

func TestRateLimiterDeniesBurstOverflow(t *testing.T) {
	e := basic.New([]policy.Rule{{Pattern: "ping", Decide: alwaysAllow}}, nil, rate.Limit(0.001), 1)
	d, err := e.Check(context.Background(), "ping", nil, nil)
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = e.Check(context.Background(), "ping", nil, nil)
	require.NoError(t, err)
	require.False(t, d.Allowed)
}
