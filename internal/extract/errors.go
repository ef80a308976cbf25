package extract

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for file extensions other than
	// .pdf and .docx. The document fails without retry.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrEmptyExtraction is returned when parsing succeeded but produced
	// no usable text. Distinct from a hard parse error so the pipeline can
	// log the two differently.
	ErrEmptyExtraction = errors.New("no text could be extracted")
)

// StrategyError records the failure of one extraction strategy.
type StrategyError struct {
	Strategy string
	Err      error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Strategy, e.Err)
}

func (e *StrategyError) Unwrap() error { return e.Err }

// ExtractionError aggregates the failures of every strategy in a fallback
// chain. It is returned only after all strategies have been tried.
type ExtractionError struct {
	Format   string
	Attempts []*StrategyError
}

func (e *ExtractionError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.Error())
	}
	return fmt.Sprintf("all %s extraction strategies failed: %s", e.Format, strings.Join(parts, "; "))
}

// Unwrap exposes the individual attempts so errors.Is can match the most
// specific failure (e.g. ErrEmptyExtraction when every strategy produced
// empty text).
func (e *ExtractionError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a
	}
	return errs
}

// allEmpty reports whether every attempt failed with ErrEmptyExtraction.
func (e *ExtractionError) allEmpty() bool {
	for _, a := range e.Attempts {
		if !errors.Is(a, ErrEmptyExtraction) {
			return false
		}
	}
	return len(e.Attempts) > 0
}
