package meta

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// Encode writes m as a JSON object in insertion order. Empty metadata
// encodes to nil so the extended region can omit it entirely.
func (m *Metadata) Encode() ([]byte, error) {
	if m.Len() == 0 {
		return nil, nil
	}

	buf := []byte{'{'}
	for i, k := range m.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		if !utf8.ValidString(k) {
			return nil, fmt.Errorf("%w: key %q is not valid UTF-8", ErrUnsupportedType, k)
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf = append(buf, key...)
		buf = append(buf, ':')

		v := m.vals[k]
		switch v.kind {
		case KindInt:
			buf = strconv.AppendInt(buf, v.i, 10)
		case KindFloat:
			if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
				return nil, fmt.Errorf("%w: key %q holds %v", ErrUnsupportedType, k, v.f)
			}
			buf = append(buf, formatFloat(v.f)...)
		case KindString:
			if !utf8.ValidString(v.s) {
				return nil, fmt.Errorf("%w: key %q holds invalid UTF-8", ErrUnsupportedType, k)
			}
			s, err := json.Marshal(v.s)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			buf = append(buf, s...)
		default:
			return nil, fmt.Errorf("%w: key %q has no value", ErrUnsupportedType, k)
		}
	}
	return append(buf, '}'), nil
}

// MarshalJSON implements json.Marshaler.
func (m *Metadata) MarshalJSON() ([]byte, error) {
	if m.Len() == 0 {
		return []byte("{}"), nil
	}
	return m.Encode()
}

// UnmarshalJSON replaces the contents of m with the object in data.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*m = *parsed
	return nil
}

// Parse decodes a metadata object. Empty input yields empty metadata.
func Parse(data []byte) (*Metadata, error) {
	md := New()
	if len(strings.TrimSpace(string(data))) == 0 {
		return md, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrCorruptHeader)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: metadata is %s, want object", ErrCorruptHeader, root.Type)
	}

	var err error
	root.ForEach(func(key, value gjson.Result) bool {
		var v Value
		v, err = scalar(value)
		if err != nil {
			err = fmt.Errorf("key %q: %w", key.String(), err)
			return false
		}
		md.Set(key.String(), v)
		return true
	})
	if err != nil {
		return nil, err
	}
	return md, nil
}

func scalar(r gjson.Result) (Value, error) {
	switch r.Type {
	case gjson.String:
		return String(r.String()), nil
	case gjson.Number:
		if strings.ContainsAny(r.Raw, ".eE") {
			return Float(r.Float()), nil
		}
		i, err := strconv.ParseInt(r.Raw, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: integer %s: %v", ErrCorruptHeader, r.Raw, err)
		}
		return Int(i), nil
	}
	return Value{}, fmt.Errorf("%w: unsupported JSON value %s", ErrCorruptHeader, r.Raw)
}

// formatFloat renders f so that it always reads back as a float.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
