package csvcodec

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidConfig is returned for a delimiter the CSV format cannot carry.
var ErrInvalidConfig = errors.New("invalid configuration")

// Delimiter separates fields within a row.
type Delimiter string

// Named delimiters.
const (
	Comma     Delimiter = ","
	Semicolon Delimiter = ";"
	Tab       Delimiter = "\t"
)

// ParseDelimiter accepts a delimiter name (comma, semicolon, tab) or a
// literal single character.
func ParseDelimiter(s string) (Delimiter, error) {
	switch strings.ToLower(s) {
	case "comma":
		return Comma, nil
	case "semicolon":
		return Semicolon, nil
	case "tab", `\t`:
		return Tab, nil
	}
	if err := ValidateDelimiter(s); err != nil {
		return "", err
	}
	return Delimiter(s), nil
}

// ValidateDelimiter rejects empty and multi-character delimiters and those
// containing CR, LF or a double quote.
func ValidateDelimiter(d string) error {
	if d == "" {
		return fmt.Errorf("%w: delimiter cannot be empty", ErrInvalidConfig)
	}
	if strings.ContainsAny(d, "\r\n\"") {
		return fmt.Errorf("%w: delimiter %q contains a reserved character", ErrInvalidConfig, d)
	}
	if utf8.RuneCountInString(d) != 1 {
		return fmt.Errorf("%w: delimiter %q must be a single character", ErrInvalidConfig, d)
	}
	return nil
}

type csvCodec struct {
	delimiter Delimiter
}

type Option func(*csvCodec)

// New returns a codec writing comma-separated rows terminated by CRLF.
func New(opts ...Option) *csvCodec {
	c := &csvCodec{
		delimiter: Comma,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithDelimiter sets the field delimiter. The value is expected to have
// passed ValidateDelimiter.
func WithDelimiter(d Delimiter) Option {
	return func(c *csvCodec) {
		c.delimiter = d
	}
}

// Delimiter returns the configured field delimiter.
func (c *csvCodec) Delimiter() Delimiter {
	return c.delimiter
}

// AppendRow appends the serialized fields and the CRLF terminator to dst.
func (c *csvCodec) AppendRow(dst []byte, fields []string) []byte {
	for i, field := range fields {
		if i > 0 {
			dst = append(dst, string(c.delimiter)...)
		}
		dst = AppendField(dst, field, string(c.delimiter))
	}
	return append(dst, '\r', '\n')
}

// NeedsQuote reports whether field must be wrapped in double quotes: it
// contains the delimiter, a double quote, CR or LF.
func NeedsQuote(field, delimiter string) bool {
	if strings.ContainsAny(field, "\"\r\n") {
		return true
	}
	return delimiter != "" && strings.Contains(field, delimiter)
}

// AppendField appends field to dst, quoted and with inner quotes doubled
// when NeedsQuote says so.
func AppendField(dst []byte, field, delimiter string) []byte {
	if !NeedsQuote(field, delimiter) {
		return append(dst, field...)
	}
	dst = append(dst, '"')
	start := 0
	for i := 0; i < len(field); i++ {
		if field[i] == '"' {
			dst = append(dst, field[start:i+1]...)
			dst = append(dst, '"')
			start = i + 1
		}
	}
	dst = append(dst, field[start:]...)
	return append(dst, '"')
}
