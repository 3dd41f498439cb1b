package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAIJSON(t *testing.T) {
	type extraction struct {
		Address string `json:"address"`
		Phase   string `json:"phase"`
	}

	tests := []struct {
		name  string
		input string
		want  extraction
	}{
		{
			"plain JSON",
			`{"address": "Košice", "phase": "3f"}`,
			extraction{Address: "Košice", Phase: "3f"},
		},
		{
			"json code fence",
			"```json\n{\"address\": \"Košice\", \"phase\": \"3f\"}\n```",
			extraction{Address: "Košice", Phase: "3f"},
		},
		{
			"bare code fence",
			"```\n{\"address\": \"Košice\"}\n```",
			extraction{Address: "Košice"},
		},
		{
			"surrounded by prose",
			"Sure! Here is the extracted data: {\"address\": \"Košice\"} Let me know if you need more.",
			extraction{Address: "Košice"},
		},
		{
			"trailing comma",
			`{"address": "Košice", "phase": "3f",}`,
			extraction{Address: "Košice", Phase: "3f"},
		},
		{
			"unquoted keys",
			`{address: "Košice", phase: "3f"}`,
			extraction{Address: "Košice", Phase: "3f"},
		},
		{
			"nested braces in strings",
			`The result: {"address": "Košice {city}", "phase": "3f"}`,
			extraction{Address: "Košice {city}", Phase: "3f"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got extraction
			require.NoError(t, ParseAIJSON(tt.input, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAIJSON_Array(t *testing.T) {
	var got []int
	require.NoError(t, ParseAIJSON("the scores are [1, 2, 3] as requested", &got))
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestParseAIJSON_Errors(t *testing.T) {
	var got map[string]interface{}

	assert.Error(t, ParseAIJSON("", &got))
	assert.Error(t, ParseAIJSON("   ", &got))
	assert.Error(t, ParseAIJSON("I could not find any property details.", &got))
	assert.Error(t, ParseAIJSON("{\"address\": \"unterminated", &got))
}
