package csvexport

import (
	"log/slog"

	"github.com/go-data-exporter/csvexport/charset"
	"github.com/go-data-exporter/csvexport/tostring"
)

// Option configures an Encoder at construction.
type Option func(*Encoder)

// WithDelimiter sets the field delimiter. An invalid delimiter makes New fail
// with ErrInvalidConfig.
func WithDelimiter(d string) Option {
	return func(e *Encoder) {
		if _, err := e.SetDelimiter(d); err != nil && e.optErr == nil {
			e.optErr = err
		}
	}
}

func WithOutputCharset(c string) Option {
	return func(e *Encoder) {
		e.SetOutputCharset(c)
	}
}

func WithOutputFilename(f string) Option {
	return func(e *Encoder) {
		e.SetOutputFilename(f)
	}
}

// WithConcurrency serializes rows on up to n goroutines for large Documents.
// Values below 2 keep encoding sequential.
func WithConcurrency(n int) Option {
	return func(e *Encoder) {
		e.workers = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Encoder) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTranscoder replaces the x/text based charset conversion.
func WithTranscoder(t charset.Transcoder) Option {
	return func(e *Encoder) {
		if t != nil {
			e.transcoder = t
		}
	}
}

// WithToStringFunc replaces the conversion of row values to field text.
func WithToStringFunc(fn tostring.Func) Option {
	return func(e *Encoder) {
		if fn != nil {
			e.toString = fn
		}
	}
}

// WithNullText sets the field text written for values the ToStringFunc
// reports as NULL. The default is an empty field.
func WithNullText(s string) Option {
	return func(e *Encoder) {
		e.nullText = s
	}
}
