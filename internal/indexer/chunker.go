package indexer

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultChunkSize is the window size in bytes for one chunk.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is how far each window reaches back into the
	// previous one to preserve cross-chunk context.
	DefaultChunkOverlap = 200

	// boundaryBackscan is how far back from the tentative cut we look for a
	// sentence-ending punctuation mark.
	boundaryBackscan = 100
	// tailGuard terminates the loop once the next window start is this close
	// to the end of the text.
	tailGuard = 10
)

// Chunk splits text into overlapping segments sized for embedding-model
// limits. Text no longer than size is returned as a single segment. Cuts
// prefer a sentence boundary within boundaryBackscan bytes of the window
// end, then the last whitespace, then an exact cut. The output is
// deterministic for a given input and parameters.
func Chunk(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
		if overlap >= size {
			overlap = size / 5
		}
	}

	if len(text) <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for {
		if len(text)-start <= size {
			chunks = append(chunks, text[start:])
			return chunks
		}

		cut := findCut(text, start, start+size)
		chunks = append(chunks, text[start:cut])

		next := cut - overlap
		if next <= start || next >= len(text)-tailGuard {
			// Forward-progress guard: emit whatever remains and stop.
			if cut < len(text) {
				chunks = append(chunks, text[cut:])
			}
			return chunks
		}
		start = next
	}
}

// findCut picks the cut position for a window ending at end: a sentence
// boundary within the backscan range, else the last whitespace, else end
// itself (backed off to a rune boundary so multi-byte characters are never
// split).
func findCut(text string, start, end int) int {
	low := end - boundaryBackscan
	if low < start {
		low = start
	}

	// Sentence-ending punctuation followed by whitespace
	for i := end - 1; i > low; i-- {
		c := text[i-1]
		if (c == '.' || c == '!' || c == '?') && isSpace(text[i]) {
			return i
		}
	}

	// Last whitespace before the boundary
	for i := end - 1; i > start; i-- {
		if isSpace(text[i]) {
			return i
		}
	}

	// Exact cut, but never mid-rune
	for end > start && !utf8.RuneStart(text[end]) {
		end--
	}
	return end
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// chunkTexts applies Chunk and drops whitespace-only segments, preserving
// order.
func chunkTexts(text string, size, overlap int) []string {
	var out []string
	for _, c := range Chunk(text, size, overlap) {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}
