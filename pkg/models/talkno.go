package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// TalkNo is a public talk identifier that can be unmarshaled from either a
// JSON number (regular outline numbers) or a JSON string (special codes such
// as "CO" or "memorial"). Numeric talks marshal back as numbers.
type TalkNo struct {
	Numeric bool
	Number  int
	Code    string
}

// NumericTalkNo builds a numeric talk identifier.
func NumericTalkNo(n int) *TalkNo {
	return &TalkNo{Numeric: true, Number: n}
}

// CodedTalkNo builds a string-coded talk identifier.
func CodedTalkNo(code string) *TalkNo {
	return &TalkNo{Code: code}
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *TalkNo) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	// Try unmarshaling as a number first
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		t.Numeric = true
		t.Number = n
		t.Code = ""
		return nil
	}

	// Try unmarshaling as a string; numeric strings normalize to numbers
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			t.Numeric = true
			t.Number = v
			t.Code = ""
			return nil
		}
		t.Numeric = false
		t.Number = 0
		t.Code = s
		return nil
	}

	return fmt.Errorf("TalkNo: unexpected type, expected number or string")
}

// MarshalJSON implements the json.Marshaler interface.
func (t TalkNo) MarshalJSON() ([]byte, error) {
	if t.Numeric {
		return json.Marshal(t.Number)
	}
	return json.Marshal(t.Code)
}

// String returns the display form of the identifier.
func (t *TalkNo) String() string {
	if t == nil {
		return ""
	}
	if t.Numeric {
		return strconv.Itoa(t.Number)
	}
	return t.Code
}

// Equal reports whether two identifiers refer to the same talk.
func (t *TalkNo) Equal(other *TalkNo) bool {
	if t == nil || other == nil {
		return t == nil && other == nil
	}
	if t.Numeric != other.Numeric {
		return false
	}
	if t.Numeric {
		return t.Number == other.Number
	}
	return t.Code == other.Code
}

// Less defines the talk sort order: numeric talks before coded talks,
// numeric ascending, coded lexicographic.
func (t *TalkNo) Less(other *TalkNo) bool {
	if t == nil {
		return other != nil
	}
	if other == nil {
		return false
	}
	if t.Numeric != other.Numeric {
		return t.Numeric
	}
	if t.Numeric {
		return t.Number < other.Number
	}
	return t.Code < other.Code
}
