package extract

import (
	"fmt"
	"path/filepath"
	"strings"
)

// strategy is one way of turning raw bytes into text. Strategies are tried
// in order; the first one that yields usable text wins.
type strategy struct {
	name string
	fn   func(data []byte) (string, error)
}

// Extractor converts raw document bytes into plain text. It is a pure
// transform over bytes and safe for concurrent use.
type Extractor struct {
	pdfStrategies []strategy
}

// New creates a new Extractor.
func New() *Extractor {
	return &Extractor{
		pdfStrategies: []strategy{
			{name: "pdf structured parse", fn: extractPDFText},
			{name: "pdf raw byte scan", fn: extractPrintableBytes},
		},
	}
}

// Extract converts document bytes into plain text based on the filename
// extension. Supported formats are .pdf and .docx; anything else fails fast
// with ErrUnsupportedFormat. A parse that succeeds but produces only
// whitespace yields ErrEmptyExtraction.
func (e *Extractor) Extract(data []byte, filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return e.runChain("pdf", e.pdfStrategies, data)
	case ".docx":
		return e.runChain("docx", []strategy{{name: "docx package parse", fn: extractDOCXText}}, data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// runChain tries each strategy in order and stops at the first usable
// result. When all fail, the aggregated error carries every attempt; if
// every strategy merely produced empty text, the more specific
// ErrEmptyExtraction is surfaced instead.
func (e *Extractor) runChain(format string, strategies []strategy, data []byte) (string, error) {
	agg := &ExtractionError{Format: format}

	for _, s := range strategies {
		text, err := s.fn(data)
		if err != nil {
			agg.Attempts = append(agg.Attempts, &StrategyError{Strategy: s.name, Err: err})
			continue
		}
		if strings.TrimSpace(text) == "" {
			agg.Attempts = append(agg.Attempts, &StrategyError{Strategy: s.name, Err: ErrEmptyExtraction})
			continue
		}
		return text, nil
	}

	if agg.allEmpty() {
		return "", fmt.Errorf("%s: %w", format, ErrEmptyExtraction)
	}
	return "", agg
}
