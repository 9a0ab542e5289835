package ingestion

import (
	"strings"
	"unicode/utf8"
)

// Piece is one window of a document's text. Start and End are byte offsets
// into the extracted text.
type Piece struct {
	Index int
	Text  string
	Start int
	End   int
}

// Chunk splits text into windows of cfg.ChunkSize characters that advance
// by ChunkSize-ChunkOverlap characters. Windows whose trimmed length does not
// exceed cfg.MinChunkLength are dropped; the rest are numbered from zero in
// order of their start position. An overlap outside [0, ChunkSize) is
// treated as zero.
func Chunk(text string, cfg Config) []Piece {
	size := cfg.ChunkSize
	if size <= 0 || text == "" {
		return nil
	}
	overlap := cfg.ChunkOverlap
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	step := size - overlap

	// offsets[i] is the byte offset of the i-th rune; the final entry is
	// len(text).
	offsets := make([]int, 0, utf8.RuneCountInString(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	runes := len(offsets)
	offsets = append(offsets, len(text))

	var pieces []Piece
	for start := 0; start < runes; start += step {
		end := min(start+size, runes)
		window := text[offsets[start]:offsets[end]]

		if utf8.RuneCountInString(strings.TrimSpace(window)) > cfg.MinChunkLength {
			pieces = append(pieces, Piece{
				Index: len(pieces),
				Text:  window,
				Start: offsets[start],
				End:   offsets[end],
			})
		}
		if end == runes {
			break
		}
	}
	return pieces
}
