package registry

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uuidfreeze/uuidfreeze/internal/generate"
	"github.com/uuidfreeze/uuidfreeze/internal/ignore"
)

var (
	scopeUUIDA = uuid.MustParse("aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa")
	scopeUUIDB = uuid.MustParse("bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb")
)

func TestEnter_PushesBinding(t *testing.T) {
	r := New()
	act, err := r.Enter(ChannelUUID4, generate.NewStatic(scopeUUIDA), ignore.Overrides{})
	require.NoError(t, err)

	assert.Same(t, act, r.Current(ChannelUUID4))
	assert.Equal(t, 1, r.Depth(ChannelUUID4))
	assert.Equal(t, ChannelUUID4, act.Channel())
	assert.NotNil(t, act.Tracker())
}

func TestEnter_UnknownChannel(t *testing.T) {
	r := New()
	_, err := r.Enter(Channel("uuid9"), nil, ignore.Overrides{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown channel")
}

func TestEnter_NamespaceChannelRejectsGenerator(t *testing.T) {
	r := New()
	_, err := r.Enter(ChannelUUID5, generate.NewStatic(scopeUUIDA), ignore.Overrides{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "observe-only")
}

func TestEnter_NamespaceChannelAcceptsSpy(t *testing.T) {
	r := New()
	act, err := r.Enter(ChannelUUID3, nil, ignore.Overrides{})
	require.NoError(t, err)
	assert.Same(t, act, r.Current(ChannelUUID3))
}

func TestExit_RestoresPriorBinding(t *testing.T) {
	r := New()

	outer, err := r.Enter(ChannelUUID4, generate.NewStatic(scopeUUIDA), ignore.Overrides{})
	require.NoError(t, err)
	inner, err := r.Enter(ChannelUUID4, generate.NewStatic(scopeUUIDB), ignore.Overrides{})
	require.NoError(t, err)

	assert.Same(t, inner, r.Current(ChannelUUID4))

	require.NoError(t, r.Exit(inner))
	assert.Same(t, outer, r.Current(ChannelUUID4), "exit must restore the enclosing scope exactly")

	require.NoError(t, r.Exit(outer))
	assert.Nil(t, r.Current(ChannelUUID4))
}

func TestExit_OutOfOrderFails(t *testing.T) {
	r := New()

	outer, err := r.Enter(ChannelUUID4, generate.NewStatic(scopeUUIDA), ignore.Overrides{})
	require.NoError(t, err)
	inner, err := r.Enter(ChannelUUID4, generate.NewStatic(scopeUUIDB), ignore.Overrides{})
	require.NoError(t, err)

	err = r.Exit(outer)
	require.Error(t, err)
	assert.True(t, IsOrderingViolation(err))

	// The stack is untouched by the refused pop.
	assert.Same(t, inner, r.Current(ChannelUUID4))
	assert.Equal(t, 2, r.Depth(ChannelUUID4))
}

func TestExit_EmptyStackFails(t *testing.T) {
	r := New()
	act, err := r.Enter(ChannelUUID4, nil, ignore.Overrides{})
	require.NoError(t, err)
	require.NoError(t, r.Exit(act))

	err = r.Exit(act)
	require.Error(t, err)
	assert.True(t, IsOrderingViolation(err))
}

func TestExit_NilActivation(t *testing.T) {
	r := New()
	assert.Error(t, r.Exit(nil))
}

func TestScopes_IndependentChannelsInterleave(t *testing.T) {
	r := New()

	a4, err := r.Enter(ChannelUUID4, generate.NewStatic(scopeUUIDA), ignore.Overrides{})
	require.NoError(t, err)
	a7, err := r.Enter(ChannelUUID7, generate.NewStatic(scopeUUIDB), ignore.Overrides{})
	require.NoError(t, err)

	// Channels are independent: release order across channels is free.
	require.NoError(t, r.Exit(a4))
	require.NoError(t, r.Exit(a7))
	assert.Nil(t, r.Current(ChannelUUID4))
	assert.Nil(t, r.Current(ChannelUUID7))
}

func TestSwap_ReplacesGeneratorInPlace(t *testing.T) {
	r := New()
	act, err := r.Enter(ChannelUUID4, generate.NewStatic(scopeUUIDA), ignore.Overrides{})
	require.NoError(t, err)

	require.NoError(t, r.Swap(act, generate.NewStatic(scopeUUIDB)))

	v, err := r.Intercept(ChannelUUID4, 0)
	require.NoError(t, err)
	assert.Equal(t, scopeUUIDB, v)
}

func TestSwap_ReleasedScopeFails(t *testing.T) {
	r := New()
	act, err := r.Enter(ChannelUUID4, generate.NewStatic(scopeUUIDA), ignore.Overrides{})
	require.NoError(t, err)
	require.NoError(t, r.Exit(act))

	err = r.Swap(act, generate.NewStatic(scopeUUIDB))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "released scope")
}

func TestSwap_NilGeneratorTurnsSpy(t *testing.T) {
	r := New()
	act, err := r.Enter(ChannelUUID4, generate.NewStatic(scopeUUIDA), ignore.Overrides{})
	require.NoError(t, err)
	require.NoError(t, r.Swap(act, nil))

	v, err := r.Intercept(ChannelUUID4, 0)
	require.NoError(t, err)
	assert.NotEqual(t, scopeUUIDA, v, "spy must not substitute output")
	assert.Equal(t, 1, act.Tracker().RealCount())
}

func TestSetOverrides(t *testing.T) {
	r := New()
	act, err := r.Enter(ChannelUUID4, generate.NewStatic(scopeUUIDA), ignore.Overrides{})
	require.NoError(t, err)

	ov := ignore.Overrides{Prefixes: []string{"github.com/acme/libx"}}
	require.NoError(t, r.SetOverrides(act, ov))

	require.NoError(t, r.Exit(act))
	assert.Error(t, r.SetOverrides(act, ov))
}

func TestReset_ClearsStackAndLog(t *testing.T) {
	r := New()
	act, err := r.Enter(ChannelUUID4, generate.NewStatic(scopeUUIDA), ignore.Overrides{})
	require.NoError(t, err)

	_, err = r.Intercept(ChannelUUID4, 0)
	require.NoError(t, err)
	require.Equal(t, 1, act.Tracker().Count())

	require.NoError(t, r.Reset(ChannelUUID4))

	assert.Nil(t, r.Current(ChannelUUID4))
	assert.Zero(t, act.Tracker().Count())

	// Real generation is re-enabled.
	v, err := r.Intercept(ChannelUUID4, 0)
	require.NoError(t, err)
	assert.NotEqual(t, scopeUUIDA, v)
}

func TestResetAll(t *testing.T) {
	r := New()
	_, err := r.Enter(ChannelUUID4, generate.NewStatic(scopeUUIDA), ignore.Overrides{})
	require.NoError(t, err)
	_, err = r.Enter(ChannelUUID7, generate.NewStatic(scopeUUIDB), ignore.Overrides{})
	require.NoError(t, err)

	r.ResetAll()

	for _, ch := range Channels() {
		assert.Nil(t, r.Current(ch), "channel %s", ch)
	}
}
