package csvcodec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		fields    []string
		delimiter Delimiter
		want      string
	}{
		{
			name:   "basic",
			fields: []string{"a", "b", "c"},
			want:   "a,b,c\r\n",
		},
		{
			name:   "emptyFields",
			fields: []string{"", "b", ""},
			want:   ",b,\r\n",
		},
		{
			name:   "noFields",
			fields: nil,
			want:   "\r\n",
		},
		{
			name:   "commaAndQuote",
			fields: []string{`a,"b`},
			want:   `"a,""b"` + "\r\n",
		},
		{
			name:   "onlyQuotes",
			fields: []string{`""`},
			want:   `""""""` + "\r\n",
		},
		{
			name:   "lineFeed",
			fields: []string{"multi\nline", "z"},
			want:   "\"multi\nline\",z\r\n",
		},
		{
			name:   "carriageReturn",
			fields: []string{"a\rb"},
			want:   "\"a\rb\"\r\n",
		},
		{
			name:   "leadingSpaceNotQuoted",
			fields: []string{" padded ", `back\slash`},
			want:   ` padded ,back\slash` + "\r\n",
		},
		{
			name:      "semicolon",
			fields:    []string{"a;b", "c,d"},
			delimiter: Semicolon,
			want:      `"a;b";c,d` + "\r\n",
		},
		{
			name:      "tab",
			fields:    []string{"a\tb", "c"},
			delimiter: Tab,
			want:      "\"a\tb\"\tc\r\n",
		},
		{
			name:      "multiByteDelimiter",
			fields:    []string{"a§b", "c"},
			delimiter: "§",
			want:      `"a§b"§c` + "\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var opts []Option
			if tt.delimiter != "" {
				opts = append(opts, WithDelimiter(tt.delimiter))
			}
			got := New(opts...).AppendRow(nil, tt.fields)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestAppendRowAppends(t *testing.T) {
	c := New()
	buf := c.AppendRow(nil, []string{"name", "age"})
	buf = c.AppendRow(buf, []string{"Jan", "30"})
	assert.Equal(t, "name,age\r\nJan,30\r\n", string(buf))
}

func TestValidateDelimiter(t *testing.T) {
	t.Parallel()

	for _, d := range []string{"", "\n", "\r", `"`, ";;", ",\n"} {
		err := ValidateDelimiter(d)
		assert.ErrorIs(t, err, ErrInvalidConfig, "%q", d)
	}
	for _, d := range []string{",", ";", "\t", "|", "§"} {
		assert.NoError(t, ValidateDelimiter(d), "%q", d)
	}
}

func TestParseDelimiter(t *testing.T) {
	t.Parallel()

	tests := map[string]Delimiter{
		"comma":     Comma,
		"Semicolon": Semicolon,
		"TAB":       Tab,
		`\t`:        Tab,
		"|":         "|",
		";":         Semicolon,
	}
	for in, want := range tests {
		got, err := ParseDelimiter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDelimiter("pipe")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNeedsQuote(t *testing.T) {
	assert.False(t, NeedsQuote("plain", ","))
	assert.True(t, NeedsQuote("a,b", ","))
	assert.False(t, NeedsQuote("a,b", ";"))
	assert.True(t, NeedsQuote(strings.Repeat("x", 10)+`"`, ";"))
}
