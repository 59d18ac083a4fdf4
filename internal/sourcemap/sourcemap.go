// Package sourcemap implements the pieces of the source map v3 format the
// printer needs: line offset tables for translating byte offsets into
// line/column pairs, and base64 VLQ encoding of the mappings string.
package sourcemap

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Mapping relates a position in the generated output to a position in the
// original source. All values are 0-based.
type Mapping struct {
	GenLine int32
	GenCol  int32
	SrcLine int32
	SrcCol  int32
}

// GenerateLineOffsetTable returns the byte offset of the start of every line.
func GenerateLineOffsetTable(contents string) []int32 {
	table := []int32{0}
	for i := 0; i < len(contents); i++ {
		if contents[i] == '\n' {
			table = append(table, int32(i+1))
		}
	}
	return table
}

// LineAndColumn converts a byte offset into 0-based line and column using a
// previously generated line offset table.
func LineAndColumn(table []int32, offset int32) (int32, int32) {
	// Binary search for the last line start <= offset.
	lo, hi := 0, len(table)
	for lo < hi {
		mid := (lo + hi) / 2
		if table[mid] <= offset {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	line := int32(lo - 1)
	return line, offset - table[line]
}

const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

func encodeVLQ(buf []byte, value int32) []byte {
	v := uint32(value) << 1
	if value < 0 {
		v = (uint32(-value) << 1) | 1
	}
	for {
		digit := v & 31
		v >>= 5
		if v != 0 {
			digit |= 32
		}
		buf = append(buf, base64Chars[digit])
		if v == 0 {
			return buf
		}
	}
}

// EncodeMappings serializes mappings into the semicolon/comma VLQ format.
// Mappings must be ordered by generated position; all of them reference
// source index 0 since each call transforms exactly one module.
func EncodeMappings(mappings []Mapping) string {
	var buf []byte
	var prevGenLine, prevGenCol, prevSrcLine, prevSrcCol int32
	firstInLine := true

	for _, m := range mappings {
		for prevGenLine < m.GenLine {
			buf = append(buf, ';')
			prevGenLine++
			prevGenCol = 0
			firstInLine = true
		}
		if !firstInLine {
			buf = append(buf, ',')
		}
		firstInLine = false

		buf = encodeVLQ(buf, m.GenCol-prevGenCol)
		buf = encodeVLQ(buf, 0) // source index
		buf = encodeVLQ(buf, m.SrcLine-prevSrcLine)
		buf = encodeVLQ(buf, m.SrcCol-prevSrcCol)

		prevGenCol = m.GenCol
		prevSrcLine = m.SrcLine
		prevSrcCol = m.SrcCol
	}
	return string(buf)
}

type sourceMap struct {
	Version        int      `json:"version"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// Generate assembles a complete source map document for one source file.
func Generate(sourceName string, sourceContents string, mappings []Mapping) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(sourceMap{
		Version:        3,
		Sources:        []string{sourceName},
		SourcesContent: []string{sourceContents},
		Names:          []string{},
		Mappings:       EncodeMappings(mappings),
	})
	return strings.TrimSuffix(buf.String(), "\n")
}
