package sourcemap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineOffsetTable(t *testing.T) {
	table := GenerateLineOffsetTable("ab\ncd\n\nef")
	assert.Equal(t, []int32{0, 3, 6, 7}, table)

	line, col := LineAndColumn(table, 0)
	assert.Equal(t, int32(0), line)
	assert.Equal(t, int32(0), col)

	line, col = LineAndColumn(table, 4)
	assert.Equal(t, int32(1), line)
	assert.Equal(t, int32(1), col)

	line, col = LineAndColumn(table, 8)
	assert.Equal(t, int32(3), line)
	assert.Equal(t, int32(1), col)
}

func TestEncodeMappings(t *testing.T) {
	assert.Equal(t, "AAAA", EncodeMappings([]Mapping{{0, 0, 0, 0}}))

	// Deltas, not absolutes, after the first segment
	assert.Equal(t, "AAAA,IAAI", EncodeMappings([]Mapping{{0, 0, 0, 0}, {0, 4, 0, 4}}))

	// A generated line break resets the generated column
	assert.Equal(t, "AAAA;AACA", EncodeMappings([]Mapping{{0, 0, 0, 0}, {1, 0, 1, 0}}))
}

func TestGenerate(t *testing.T) {
	doc := Generate("/src/app.js", "let x = 1;", []Mapping{{0, 0, 0, 0}})

	var decoded struct {
		Version        int      `json:"version"`
		Sources        []string `json:"sources"`
		SourcesContent []string `json:"sourcesContent"`
		Names          []string `json:"names"`
		Mappings       string   `json:"mappings"`
	}
	require.NoError(t, json.Unmarshal([]byte(doc), &decoded))
	assert.Equal(t, 3, decoded.Version)
	assert.Equal(t, []string{"/src/app.js"}, decoded.Sources)
	assert.Equal(t, []string{"let x = 1;"}, decoded.SourcesContent)
	assert.Empty(t, decoded.Names)
	assert.Equal(t, "AAAA", decoded.Mappings)
}
