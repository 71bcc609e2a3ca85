package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogPersonas(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	require.Contains(t, catalog, "julia")
	require.Contains(t, catalog, "pando")

	for name, p := range catalog {
		assert.Equal(t, name, p.Name)
		assert.NotEmpty(t, p.Greeting, name)
		assert.NotEmpty(t, p.Fallback, name)
	}
}

func TestMatchFirstIntentWins(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	julia := catalog["julia"]

	in, ok := julia.Match("Help me submit my timesheet")
	require.True(t, ok)
	assert.Equal(t, ActionSubmitTimesheet, in.Action)

	in, ok = julia.Match("any TICKET news")
	require.True(t, ok)
	assert.Equal(t, "tickets", in.Name)

	_, ok = julia.Match("good morning")
	assert.False(t, ok)
}

func TestLoadCatalogValidates(t *testing.T) {
	_, err := LoadCatalog([]byte("personas: {}"))
	assert.Error(t, err)

	_, err = LoadCatalog([]byte(`
personas:
  bot:
    intents:
      - name: broken
        patterns: ["x"]
        action: launch_rockets
`))
	assert.ErrorContains(t, err, "unknown action")

	catalog, err := LoadCatalog([]byte(`
personas:
  bot:
    fallback: "?"
    intents:
      - name: hi
        patterns: ["HeLLo"]
        reply: "hi"
`))
	require.NoError(t, err)
	_, ok := catalog["bot"].Match("hello there")
	assert.True(t, ok)
}
