package ignore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/uuidfreeze/uuidfreeze/internal/origin"
)

func chain(modules ...string) []origin.Frame {
	frames := make([]origin.Frame, len(modules))
	for i, m := range modules {
		frames[i] = origin.Frame{Module: m, Function: "f"}
	}
	return frames
}

func TestMatch_ImmediateCaller(t *testing.T) {
	c := chain("github.com/acme/libx/client", "github.com/acme/app")
	assert.True(t, Match(c, []string{"github.com/acme/libx"}))
}

func TestMatch_DeepFrame(t *testing.T) {
	// The library appears several frames out, not as the immediate caller.
	c := chain(
		"github.com/acme/libx/internal/ids",
		"github.com/acme/libx/client",
		"github.com/acme/app/service",
		"github.com/acme/app",
	)
	assert.True(t, Match(c, []string{"github.com/acme/app/service"}))
}

func TestMatch_NoMatch(t *testing.T) {
	c := chain("github.com/acme/app", "main")
	assert.False(t, Match(c, []string{"github.com/acme/libx"}))
}

func TestMatch_EmptyPrefixList(t *testing.T) {
	c := chain("github.com/acme/libx")
	assert.False(t, Match(c, nil))
	assert.False(t, Match(c, []string{}))
}

func TestMatch_SkipsEmptyEntries(t *testing.T) {
	c := chain("", "github.com/acme/app")
	assert.False(t, Match(c, []string{""}))
	assert.True(t, Match(c, []string{"", "github.com/acme"}))
}

func TestEffective_UnionsDefaultsAndOverrides(t *testing.T) {
	defaults := []string{"github.com/aws", "go.opentelemetry.io"}
	ov := Overrides{Prefixes: []string{"github.com/acme/internal"}}

	got := Effective(defaults, ov)

	assert.Equal(t, []string{"github.com/aws", "go.opentelemetry.io", "github.com/acme/internal"}, got)
}

func TestEffective_DisableDefaults(t *testing.T) {
	defaults := []string{"github.com/aws"}
	ov := Overrides{Prefixes: []string{"github.com/acme"}, DisableDefaults: true}

	got := Effective(defaults, ov)

	assert.Equal(t, []string{"github.com/acme"}, got)
}

func TestEffective_DoesNotAliasDefaults(t *testing.T) {
	defaults := []string{"a", "b"}
	got := Effective(defaults, Overrides{Prefixes: []string{"c"}})
	got[0] = "mutated"
	assert.Equal(t, "a", defaults[0])
}
