package scanner

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/go-data-exporter/csvexport/normalize"
)

// jsonNumbers keeps numbers as json.Number so large integers survive.
var jsonNumbers = jsoniter.Config{UseNumber: true, EscapeHTML: true}.Froze()

const maxJSONLine = 16 << 20

// jsonArrayScanner reads a top-level JSON array one element at a time.
type jsonArrayScanner struct {
	iter    *jsoniter.Iterator
	current any
	started bool
	done    bool
	err     error
}

// FromJSONArray creates a Rows cursor over a JSON document of the form
// [[...], [...]]. Elements are decoded lazily; an element that is not an
// array fails ScanRow with normalize.ErrInvalidInput.
func FromJSONArray(r io.Reader) Rows {
	return &jsonArrayScanner{iter: jsoniter.Parse(jsonNumbers, r, 4096)}
}

func (s *jsonArrayScanner) Next() bool {
	if s.done {
		return false
	}
	if !s.started && s.iter.WhatIsNext() != jsoniter.ArrayValue {
		s.fail(errors.New("document is not a JSON array"))
		return false
	}
	s.started = true
	if !s.iter.ReadArray() {
		s.done = true
		s.checkIter()
		return false
	}
	s.current = s.iter.Read()
	return !s.checkIter()
}

// checkIter records a decode error. EOF is never expected: a complete
// document ends with the closing bracket before the reader is drained.
func (s *jsonArrayScanner) checkIter() bool {
	switch err := s.iter.Error; {
	case err == nil:
		return false
	case errors.Is(err, io.EOF):
		s.fail(io.ErrUnexpectedEOF)
	default:
		s.fail(err)
	}
	return true
}

func (s *jsonArrayScanner) fail(err error) {
	s.done = true
	s.err = err
}

func (s *jsonArrayScanner) ScanRow() ([]any, error) {
	return jsonRow(s.current)
}

func (s *jsonArrayScanner) Driver() string {
	return "json"
}

func (s *jsonArrayScanner) Err() error {
	return s.err
}

// jsonLinesScanner reads one JSON array per line.
type jsonLinesScanner struct {
	lines   *bufio.Scanner
	line    int
	current any
	err     error
}

// FromJSONLines creates a Rows cursor over newline-delimited JSON arrays.
// Blank lines are skipped.
func FromJSONLines(r io.Reader) Rows {
	lines := bufio.NewScanner(r)
	lines.Buffer(make([]byte, 0, 64<<10), maxJSONLine)
	return &jsonLinesScanner{lines: lines}
}

func (s *jsonLinesScanner) Next() bool {
	if s.err != nil {
		return false
	}
	for s.lines.Scan() {
		s.line++
		data := bytes.TrimSpace(s.lines.Bytes())
		if len(data) == 0 {
			continue
		}
		var v any
		if err := jsonNumbers.Unmarshal(data, &v); err != nil {
			s.err = fmt.Errorf("line %d: %w", s.line, err)
			return false
		}
		s.current = v
		return true
	}
	s.err = s.lines.Err()
	return false
}

func (s *jsonLinesScanner) ScanRow() ([]any, error) {
	return jsonRow(s.current)
}

func jsonRow(v any) ([]any, error) {
	row, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w, JSON %T given", normalize.ErrInvalidInput, v)
	}
	return row, nil
}

func (s *jsonLinesScanner) Driver() string {
	return "jsonl"
}

func (s *jsonLinesScanner) Err() error {
	return s.err
}
