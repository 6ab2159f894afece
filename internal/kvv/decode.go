package kvv

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// decodeList normalizes an EFA field that may be absent, null, a single object
// or an array into a list of raw entries. When wrapper is set and the field is
// an object carrying that key (e.g. {"point": ...}), the wrapped value is used.
func decodeList(raw json.RawMessage, wrapper string) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return nil, nil
	}

	switch raw[0] {
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		return list, nil
	case '{':
		if wrapper != "" {
			var obj map[string]json.RawMessage
			if err := json.Unmarshal(raw, &obj); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrParse, err)
			}
			if inner, ok := obj[wrapper]; ok {
				return decodeList(inner, "")
			}
		}
		return []json.RawMessage{raw}, nil
	default:
		return nil, fmt.Errorf("%w: expected object or array, got %s", ErrParse, preview(raw))
	}
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// text accepts either a JSON string or a JSON number; EFA mixes both.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = text(n.String())
	return nil
}

func (t text) String() string {
	return strings.TrimSpace(string(t))
}

func (t text) or(fallback string) string {
	if s := t.String(); s != "" {
		return s
	}
	return fallback
}

func (t text) int() (int, bool) {
	n, err := strconv.Atoi(t.String())
	if err != nil {
		return 0, false
	}
	return n, true
}

// flag accepts true/false, 0/1 and their string forms
type flag bool

func (f *flag) UnmarshalJSON(data []byte) error {
	var t text
	if err := t.UnmarshalJSON(data); err == nil {
		switch strings.ToLower(t.String()) {
		case "1", "true", "yes":
			*f = true
		default:
			*f = false
		}
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	*f = flag(b)
	return nil
}
