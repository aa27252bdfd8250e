package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSchema(t *testing.T) {
	out, err := generateSchema()
	require.NoError(t, err)

	var schema struct {
		Title      string                    `json:"title"`
		Properties map[string]map[string]any `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(out, &schema))

	assert.Equal(t, "DittoList Configuration", schema.Title)
	for _, section := range []string{"logging", "server", "listing", "cache", "api", "store", "recent", "search"} {
		assert.Contains(t, schema.Properties, section)
	}

	listing, ok := schema.Properties["listing"]["properties"].(map[string]any)
	require.True(t, ok, "listing section is inlined")
	assert.Contains(t, listing, "streaming_threshold")

	timeout, ok := listing["stream_timeout"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", timeout["type"])
}
