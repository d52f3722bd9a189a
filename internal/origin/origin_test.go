package origin

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapture_ImmediateCallerFirst(t *testing.T) {
	chain := Capture(0)

	require.NotEmpty(t, chain)
	first := chain[0]
	assert.Equal(t, "github.com/uuidfreeze/uuidfreeze/internal/origin", first.Module)
	assert.Equal(t, "TestCapture_ImmediateCallerFirst", first.Function)
	assert.True(t, strings.HasSuffix(first.File, "origin_test.go"))
	assert.Greater(t, first.Line, 0)
}

func TestCapture_IncludesOuterFrames(t *testing.T) {
	var chain []Frame
	inner := func() {
		chain = Capture(0)
	}
	inner()

	require.NotEmpty(t, chain)

	// The chain must reach past the closure into the test runner.
	var sawTesting bool
	for _, fr := range chain {
		if fr.Module == "testing" {
			sawTesting = true
		}
	}
	assert.True(t, sawTesting, "chain should include the testing package frame")
}

func TestCapture_SkipDropsFrames(t *testing.T) {
	direct := Capture(0)
	skipped := Capture(1)

	require.NotEmpty(t, direct)
	require.NotEmpty(t, skipped)
	// Skipping one frame removes this test function from the front.
	assert.NotEqual(t, direct[0].Function, skipped[0].Function)
}

func TestSplitFunction(t *testing.T) {
	cases := []struct {
		name      string
		qualified string
		module    string
		fn        string
	}{
		{"plain function", "github.com/acme/shop/internal/orders.Create", "github.com/acme/shop/internal/orders", "Create"},
		{"pointer method", "github.com/acme/shop/internal/orders.(*Service).Create", "github.com/acme/shop/internal/orders", "(*Service).Create"},
		{"main package", "main.run", "main", "run"},
		{"stdlib", "testing.tRunner", "testing", "tRunner"},
		{"closure", "github.com/acme/shop/pkg/ids.New.func1", "github.com/acme/shop/pkg/ids", "New.func1"},
		{"no package", "goexit", "", "goexit"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			module, fn := splitFunction(tc.qualified)
			assert.Equal(t, tc.module, module)
			assert.Equal(t, tc.fn, fn)
		})
	}
}
