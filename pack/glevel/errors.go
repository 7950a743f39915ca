package glevel

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrEncoding             = errors.New("invalid text encoding")
	ErrTruncatedFile        = errors.New("truncated file")
	ErrInvalidDimensions    = errors.New("invalid dimensions")
	ErrTileCountMismatch    = errors.New("tile count mismatch")
	ErrMalformedLegendEntry = errors.New("malformed legend entry")
)

// FormatError aborts a parse. Line is 1-based; Field is the 0-based index of
// the offending field in the line, or -1 when the whole line is at fault.
type FormatError struct {
	Kind  error
	Line  int
	Field int
	Msg   string
	cause error
}

func (e *FormatError) Error() string {
	pos := fmt.Sprintf("line %d", e.Line)
	if e.Field >= 0 {
		pos += fmt.Sprintf(" field %d", e.Field)
	}
	if e.cause != nil {
		return fmt.Sprintf("glevel: %s: %v: %s: %v", pos, e.Kind, e.Msg, e.cause)
	}
	return fmt.Sprintf("glevel: %s: %v: %s", pos, e.Kind, e.Msg)
}

func (e *FormatError) Unwrap() error { return e.Kind }

func (e *FormatError) Cause() error { return e.cause }

func (e *FormatError) Position() (line, field int) { return e.Line, e.Field }

func formatErrorf(kind error, line, field int, format string, a ...interface{}) *FormatError {
	return &FormatError{Kind: kind, Line: line, Field: field, Msg: fmt.Sprintf(format, a...)}
}

func (e *FormatError) withCause(err error) *FormatError {
	e.cause = err
	return e
}

type WarningKind int

const (
	WARN_SKIPPED_PAIR WarningKind = iota
	WARN_BAD_FLAG_VALUE
	WARN_UNRESOLVED_TILE
	WARN_SKIPPED_LEGEND_LINE
	WARN_IGNORED_BLOCK_FLAG
	WARN_BAD_DEPTH
)

var warningNames = [...]string{
	WARN_SKIPPED_PAIR:        "skipped-pair",
	WARN_BAD_FLAG_VALUE:      "bad-flag-value",
	WARN_UNRESOLVED_TILE:     "unresolved-tile",
	WARN_SKIPPED_LEGEND_LINE: "skipped-legend-line",
	WARN_IGNORED_BLOCK_FLAG:  "ignored-block-flag",
	WARN_BAD_DEPTH:           "bad-depth",
}

func (k WarningKind) String() string {
	if k >= 0 && int(k) < len(warningNames) {
		return warningNames[k]
	}
	return fmt.Sprintf("WarningKind(%d)", int(k))
}

func (k WarningKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *WarningKind) UnmarshalText(b []byte) error {
	for i, name := range warningNames {
		if name == string(b) {
			*k = WarningKind(i)
			return nil
		}
	}
	return errors.Errorf("Unknown warning kind %q", b)
}

// Warning is a leniency the parser applied instead of failing.
type Warning struct {
	Kind  WarningKind `json:"kind"`
	Line  int         `json:"line"`
	Field int         `json:"field"`
	Text  string      `json:"text"`
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d field %d: %v %q", w.Line, w.Field, w.Kind, w.Text)
}

type Diagnostics struct {
	Warnings        []Warning `json:"warnings"`
	UnresolvedTiles int       `json:"unresolved_tiles"`
	SkippedPairs    int       `json:"skipped_pairs"`
}

func (d *Diagnostics) Clean() bool {
	return len(d.Warnings) == 0
}

func (d *Diagnostics) warn(kind WarningKind, line, field int, text string) {
	d.Warnings = append(d.Warnings, Warning{Kind: kind, Line: line, Field: field, Text: text})
}
