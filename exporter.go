// Package csvexport encodes tabular data as a CSV document ready to be sent
// as a file download.
//
// A Document is any enumerable of rows and a row is any enumerable of scalar
// values (see normalize.ToSlice). Fields are quoted only when they contain the
// delimiter, a double quote or a line break, and rows end with CRLF. When the
// output charset is not UTF-8, field text is transcoded with best-effort
// substitution of characters the target charset cannot hold.
//
//	enc, err := csvexport.New(rows, csvexport.WithOutputFilename("users.csv"))
//	if err != nil {
//		return err
//	}
//	data, err := enc.Encode()
package csvexport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/go-data-exporter/csvexport/charset"
	"github.com/go-data-exporter/csvexport/codec"
	csvcodec "github.com/go-data-exporter/csvexport/codec/csv"
	"github.com/go-data-exporter/csvexport/normalize"
	"github.com/go-data-exporter/csvexport/tostring"
)

// Named delimiters.
const (
	Comma     = string(csvcodec.Comma)
	Semicolon = string(csvcodec.Semicolon)
	Tab       = string(csvcodec.Tab)
)

const (
	DefaultOutputCharset  = charset.Canonical
	DefaultOutputFilename = "output.csv"
)

// minRowsPerWorker keeps small Documents on the sequential path.
const minRowsPerWorker = 2

// Encoder holds a normalized Document and its encoding configuration.
// It is meant to be built per request and is not safe for concurrent
// configuration.
type Encoder struct {
	data       []any
	delimiter  csvcodec.Delimiter
	charset    string
	filename   string
	workers    int
	logger     *slog.Logger
	transcoder charset.Transcoder
	toString   tostring.Func
	nullText   string
	optErr     error
}

// New normalizes the outer structure of data and applies opts. It fails with
// ErrInvalidInput when data is not enumerable and with ErrInvalidConfig when
// an option is invalid. Rows themselves are normalized by Encode.
func New(data any, opts ...Option) (*Encoder, error) {
	doc, err := normalize.ToSlice(data)
	if err != nil {
		return nil, fmt.Errorf("csvexport: %w", err)
	}
	e := &Encoder{
		data:       doc,
		delimiter:  csvcodec.Comma,
		charset:    DefaultOutputCharset,
		filename:   DefaultOutputFilename,
		workers:    1,
		logger:     slog.Default(),
		transcoder: charset.Default,
		toString:   tostring.ToString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.optErr != nil {
		return nil, e.optErr
	}
	return e, nil
}

// SetDelimiter sets the field delimiter. It fails with ErrInvalidConfig when
// d is empty, longer than one character, or contains CR, LF or a double
// quote; the previous delimiter is kept in that case.
func (e *Encoder) SetDelimiter(d string) (*Encoder, error) {
	if err := csvcodec.ValidateDelimiter(d); err != nil {
		return e, fmt.Errorf("csvexport: %w", err)
	}
	e.delimiter = csvcodec.Delimiter(d)
	return e, nil
}

// SetOutputCharset sets the charset of the encoded document. Names are
// resolved when encoding.
func (e *Encoder) SetOutputCharset(c string) *Encoder {
	e.charset = c
	return e
}

// SetOutputFilename sets the name the document is delivered under.
func (e *Encoder) SetOutputFilename(f string) *Encoder {
	e.filename = f
	return e
}

func (e *Encoder) Delimiter() string {
	return string(e.delimiter)
}

func (e *Encoder) OutputCharset() string {
	return e.charset
}

func (e *Encoder) OutputFilename() string {
	return e.filename
}

// Len returns the number of rows in the Document.
func (e *Encoder) Len() int {
	return len(e.data)
}

// Encode serializes the Document. An empty Document yields an empty slice.
// A row that is not enumerable aborts the whole encode with ErrInvalidInput
// and no output.
//
// Field text is never rejected by transcoding, but the output charset itself
// is resolved first: a name the Transcoder does not support, or a delimiter
// the charset cannot represent, fails with ErrInvalidConfig before any row
// is serialized.
func (e *Encoder) Encode() (out []byte, err error) {
	if len(e.data) == 0 {
		return []byte{}, nil
	}

	var target string
	if !charset.IsCanonical(e.charset) {
		if !e.transcoder.Supports(e.charset) {
			return nil, fmt.Errorf("csvexport: %w: %w %q", ErrInvalidConfig, charset.ErrUnknownCharset, e.charset)
		}
		target = e.charset
	}
	delim, err := e.outputDelimiter(target)
	if err != nil {
		return nil, err
	}

	defer guardAlloc(&out, &err)

	start := time.Now()
	rc := codec.CSV(csvcodec.WithDelimiter(delim))
	if e.workers > 1 && len(e.data) >= e.workers*minRowsPerWorker {
		out, err = e.encodeParallel(rc, target)
	} else {
		out, err = e.encodeSequential(rc, target)
	}
	if err != nil {
		return nil, err
	}

	e.logger.Debug("csv document encoded",
		slog.Int("rows", len(e.data)),
		slog.Int("bytes", len(out)),
		slog.String("charset", e.charset),
		slog.Bool("transcoded", target != ""),
		slog.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

type strictEncoder interface {
	Encode(text, charset string) (string, error)
}

// outputDelimiter returns the delimiter as bytes of the target charset so
// that it compares equal to its occurrences in transcoded fields.
func (e *Encoder) outputDelimiter(target string) (csvcodec.Delimiter, error) {
	d := string(e.delimiter)
	if target == "" || d[0] < utf8.RuneSelf {
		return e.delimiter, nil
	}
	var out string
	if se, ok := e.transcoder.(strictEncoder); ok {
		var err error
		if out, err = se.Encode(d, target); err != nil {
			return "", fmt.Errorf("csvexport: %w: delimiter %q: %w", ErrInvalidConfig, d, err)
		}
	} else {
		out = e.transcoder.Transcode(d, target)
	}
	if out == "" || strings.ContainsAny(out, "\r\n\"") {
		return "", fmt.Errorf("csvexport: %w: delimiter %q has no usable form in %s", ErrInvalidConfig, d, target)
	}
	return csvcodec.Delimiter(out), nil
}

func (e *Encoder) encodeSequential(rc codec.RowCodec, target string) ([]byte, error) {
	var buf bytes.Buffer
	row := make([]byte, 0, 256)
	for i := range e.data {
		var err error
		row, err = e.appendRow(row[:0], rc, i, target)
		if err != nil {
			return nil, err
		}
		buf.Write(row)
	}
	return buf.Bytes(), nil
}

// encodeParallel splits the Document into contiguous chunks, serializes each
// chunk on its own buffer and joins them in order. The reported error is the
// one of the lowest failing row, as in sequential mode.
func (e *Encoder) encodeParallel(rc codec.RowCodec, target string) ([]byte, error) {
	size := (len(e.data) + e.workers - 1) / e.workers
	chunks := make([][]byte, 0, e.workers)
	for lo := 0; lo < len(e.data); lo += size {
		chunks = append(chunks, nil)
	}
	errs := make([]error, len(chunks))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for c := range chunks {
		lo := c * size
		hi := min(lo+size, len(e.data))
		g.Go(func() (err error) {
			defer func() { errs[c] = err }()
			defer guardAlloc(&chunks[c], &err)
			var buf bytes.Buffer
			row := make([]byte, 0, 256)
			for i := lo; i < hi; i++ {
				if row, err = e.appendRow(row[:0], rc, i, target); err != nil {
					return err
				}
				buf.Write(row)
			}
			chunks[c] = buf.Bytes()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
		return nil, err
	}

	var buf bytes.Buffer
	for _, chunk := range chunks {
		buf.Write(chunk)
	}
	return buf.Bytes(), nil
}

// appendRow normalizes row i, renders and transcodes its fields and appends
// the serialized row to dst.
func (e *Encoder) appendRow(dst []byte, rc codec.RowCodec, i int, target string) ([]byte, error) {
	values, err := normalize.ToSlice(e.data[i])
	if err != nil {
		return nil, fmt.Errorf("csvexport: row %d: %w", i+1, err)
	}
	fields := make([]string, len(values))
	for j, v := range values {
		fields[j] = e.toString(v).Text(e.nullText)
	}
	if target != "" {
		charset.TranscodeRow(fields, e.transcoder, target)
	}
	return rc.AppendRow(dst, fields), nil
}

// guardAlloc turns a buffer growth panic into ErrBufferAllocation. Only
// bytes.Buffer reports growth failure as a recoverable panic; a single row
// too large for append still aborts the program.
func guardAlloc(out *[]byte, err *error) {
	r := recover()
	if r == nil {
		return
	}
	if rerr, ok := r.(error); ok && errors.Is(rerr, bytes.ErrTooLarge) {
		*out, *err = nil, ErrBufferAllocation
		return
	}
	panic(r)
}

// WriteTo encodes the Document and writes it to w in one call.
func (e *Encoder) WriteTo(w io.Writer) (int64, error) {
	data, err := e.Encode()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// WriteFile encodes the Document and writes it to filename. Nothing is
// created when encoding fails.
func (e *Encoder) WriteFile(filename string) error {
	data, err := e.Encode()
	if err != nil {
		return err
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Close()
}
