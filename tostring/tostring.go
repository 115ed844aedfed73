// Package tostring renders row values as CSV field text.
//
// Values that carry no data (nil, zero time, empty JSON containers) are
// reported as NULL so the caller can decide how to print them; the encoder
// prints its configured null text, an empty field by default.
package tostring

import (
	"database/sql/driver"
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// jsonStd is a high-performance JSON encoder compatible with the standard library.
var jsonStd = jsoniter.ConfigCompatibleWithStandardLibrary

// String is the text of a value plus a flag telling whether the value was NULL.
type String struct {
	String string
	IsNULL bool
}

// Func renders a single value.
type Func func(v any) String

// Text returns the field text, or nullValue when s is NULL.
func (s String) Text(nullValue string) string {
	if s.IsNULL {
		return nullValue
	}
	return s.String
}

// ToString converts v to its field text.
//
// Booleans and numbers, including named types built on them, are printed in
// their shortest lossless form. time.Time uses RFC3339Nano. Pointers and
// database/sql nullable values are unwrapped, nil ones being NULL. Types
// implementing json.Marshaler, encoding.TextMarshaler or fmt.Stringer are
// printed through those methods; anything else, including nested slices and
// maps, is printed as JSON.
func ToString(v any) String {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return String{IsNULL: true}
	}
	switch v := v.(type) {
	case nil:
		return String{IsNULL: true}
	case string:
		return String{String: v}
	case []byte:
		return String{String: string(v)}
	case json.Number:
		return String{String: v.String()}
	case time.Time:
		if v.IsZero() {
			return String{IsNULL: true}
		}
		return String{String: v.Format(time.RFC3339Nano)}
	case driver.Valuer:
		if dv, err := v.Value(); err == nil {
			return ToString(dv)
		}
	case json.Marshaler:
		if data, err := v.MarshalJSON(); err == nil {
			return fromJSON(data)
		}
	case encoding.TextMarshaler:
		if data, err := v.MarshalText(); err == nil {
			return String{String: string(data)}
		}
	case fmt.Stringer:
		return String{String: v.String()}
	}
	if s, ok := fromKind(reflect.ValueOf(v)); ok {
		return s
	}
	if data, err := jsonStd.Marshal(v); err == nil {
		return fromJSON(data)
	}
	return String{String: fmt.Sprint(v)}
}

func fromKind(rv reflect.Value) (String, bool) {
	switch rv.Kind() {
	case reflect.Bool:
		return String{String: strconv.FormatBool(rv.Bool())}, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return String{String: strconv.FormatInt(rv.Int(), 10)}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return String{String: strconv.FormatUint(rv.Uint(), 10)}, true
	case reflect.Float32:
		return String{String: strconv.FormatFloat(rv.Float(), 'f', -1, 32)}, true
	case reflect.Float64:
		return String{String: strconv.FormatFloat(rv.Float(), 'f', -1, 64)}, true
	case reflect.String:
		return String{String: rv.String()}, true
	case reflect.Pointer:
		return ToString(rv.Elem().Interface()), true
	}
	return String{}, false
}

func fromJSON(data []byte) String {
	s := strings.Trim(string(data), `"`)
	if s == "[]" || s == "{}" || s == "null" {
		return String{IsNULL: true}
	}
	return String{String: s}
}
