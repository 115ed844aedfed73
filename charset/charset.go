// Package charset converts UTF-8 field values into an output character set.
//
// Conversion is lossy: a rune the target cannot represent is
// transliterated when a close ASCII form exists and replaced with '?'
// otherwise. Transcoding never fails.
package charset

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonical is the charset all input text is assumed to be in.
const Canonical = "utf-8"

var (
	// ErrUnknownCharset is returned by Lookup for names no index recognizes.
	ErrUnknownCharset = errors.New("unknown charset")

	// ErrUnrepresentable is returned by Encode for text the target charset
	// has no bytes for.
	ErrUnrepresentable = errors.New("text not representable")
)

// Transcoder converts text from the canonical charset into a named one.
type Transcoder interface {
	Supports(charset string) bool
	Transcode(text, charset string) string
}

// IsCanonical reports whether name denotes UTF-8. The comparison ignores
// case and surrounding space.
func IsCanonical(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	return name == Canonical || name == "utf8"
}

// TranscodeRow converts every field of row in place.
func TranscodeRow(row []string, t Transcoder, charset string) {
	for i := range row {
		row[i] = t.Transcode(row[i], charset)
	}
}

// Target is a resolved output charset.
type Target struct {
	name      string
	enc       encoding.Encoding
	asciiOnly bool
}

// Name returns the name the target was looked up with.
func (t *Target) Name() string {
	return t.name
}

// Lookup resolves a charset name. IANA names and aliases are tried first,
// then WHATWG labels, so "iso-8859-1" means Latin-1 and not windows-1252.
func Lookup(name string) (*Target, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "":
		return nil, fmt.Errorf("%w: empty name", ErrUnknownCharset)
	case "ascii", "us-ascii", "ansi_x3.4-1968", "646":
		return &Target{name: name, enc: charmap.ISO8859_1, asciiOnly: true}, nil
	}
	if IsCanonical(key) {
		return &Target{name: name, enc: encoding.Nop}, nil
	}
	if enc, err := ianaindex.IANA.Encoding(key); err == nil && enc != nil {
		return &Target{name: name, enc: enc}, nil
	}
	if enc, err := htmlindex.Get(key); err == nil && enc != nil {
		return &Target{name: name, enc: enc}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
}

// Transcode converts UTF-8 text into the target charset. Invalid UTF-8 input
// is treated as U+FFFD and substituted like any other unmappable rune.
func (t *Target) Transcode(text string) string {
	if t.enc == encoding.Nop {
		return text
	}
	text = strings.ToValidUTF8(text, string(utf8.RuneError))
	enc := t.enc.NewEncoder()
	if t.fits(text) {
		if out, err := enc.String(text); err == nil {
			return out
		}
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if s, ok := t.encodeRune(enc, r); ok {
			b.WriteString(s)
			continue
		}
		b.WriteString(t.substitute(enc, r))
	}
	return b.String()
}

// Encode converts text into the target charset without substitution.
func (t *Target) Encode(text string) (string, error) {
	if t.enc == encoding.Nop {
		return text, nil
	}
	if utf8.ValidString(text) && t.fits(text) {
		if out, err := t.enc.NewEncoder().String(text); err == nil {
			return out, nil
		}
	}
	return "", fmt.Errorf("%w: %q in %s", ErrUnrepresentable, text, t.name)
}

func (t *Target) fits(text string) bool {
	if !t.asciiOnly {
		return true
	}
	for i := 0; i < len(text); i++ {
		if text[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func (t *Target) encodeRune(enc *encoding.Encoder, r rune) (string, bool) {
	if r == utf8.RuneError || (t.asciiOnly && r >= utf8.RuneSelf) {
		return "", false
	}
	out, err := enc.String(string(r))
	if err != nil {
		return "", false
	}
	return out, true
}

func (t *Target) encodeAll(enc *encoding.Encoder, s string) (string, bool) {
	var b strings.Builder
	for _, r := range s {
		out, ok := t.encodeRune(enc, r)
		if !ok {
			return "", false
		}
		b.WriteString(out)
	}
	return b.String(), true
}

// substitute returns the closest representation of r the target can hold.
func (t *Target) substitute(enc *encoding.Encoder, r rune) string {
	if alt, ok := transliterations[r]; ok {
		if out, ok := t.encodeAll(enc, alt); ok {
			return out
		}
	}
	if base := stripMarks(r); base != "" && base != string(r) {
		if out, ok := t.encodeAll(enc, base); ok {
			return out
		}
	}
	if out, ok := t.encodeRune(enc, '?'); ok {
		return out
	}
	return ""
}

// stripMarks decomposes r and drops combining marks, so 'Č' becomes "C"
// and the ligature 'ﬁ' becomes "fi".
func stripMarks(r rune) string {
	tr := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(tr, string(r))
	if err != nil {
		return ""
	}
	return out
}

// Registry is a Transcoder that resolves charsets through Lookup and caches
// the result. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	targets map[string]*Target
}

// Default is the Registry used by the encoder unless another Transcoder is
// configured.
var Default = &Registry{}

func (r *Registry) target(name string) (*Target, error) {
	r.mu.RLock()
	t, ok := r.targets[name]
	r.mu.RUnlock()
	if ok {
		return t, nil
	}
	t, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	if r.targets == nil {
		r.targets = make(map[string]*Target)
	}
	r.targets[name] = t
	r.mu.Unlock()
	return t, nil
}

// Supports reports whether Lookup recognizes charset.
func (r *Registry) Supports(charset string) bool {
	_, err := r.target(charset)
	return err == nil
}

// Transcode converts text into charset. Unknown charsets leave text unchanged;
// use Supports to reject them up front.
func (r *Registry) Transcode(text, charset string) string {
	t, err := r.target(charset)
	if err != nil {
		return text
	}
	return t.Transcode(text)
}

// Encode converts text into charset and fails instead of substituting.
func (r *Registry) Encode(text, charset string) (string, error) {
	t, err := r.target(charset)
	if err != nil {
		return "", err
	}
	return t.Encode(text)
}
