package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func extractField(t *testing.T, raw json.RawMessage, field string) json.RawMessage {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	return fields[field]
}
