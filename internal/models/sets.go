package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
)

// IDSet is an insertion-ordered set of user ids stored as a JSON array column.
type IDSet []uint

// Contains reports whether id is a member.
func (s IDSet) Contains(id uint) bool {
	return slices.Contains(s, id)
}

// Add inserts id and reports whether the set changed.
func (s *IDSet) Add(id uint) bool {
	if s.Contains(id) {
		return false
	}
	*s = append(*s, id)
	return true
}

// Remove deletes id and reports whether the set changed.
func (s *IDSet) Remove(id uint) bool {
	i := slices.Index(*s, id)
	if i < 0 {
		return false
	}
	*s = slices.Delete(*s, i, i+1)
	return true
}

// Len returns the number of members.
func (s IDSet) Len() int {
	return len(s)
}

// Value implements driver.Valuer.
func (s IDSet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]uint(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *IDSet) Scan(src any) error {
	raw, err := scanJSONBytes(src)
	if err != nil {
		return err
	}
	out := IDSet{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, (*[]uint)(&out)); err != nil {
			return fmt.Errorf("scan IDSet: %w", err)
		}
	}
	*s = out
	return nil
}

// MarshalJSON renders a nil set as [] rather than null.
func (s IDSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]uint(s))
}

// StringSet is an insertion-ordered set of strings stored as a JSON array column.
type StringSet []string

// Contains reports whether v is a member.
func (s StringSet) Contains(v string) bool {
	return slices.Contains(s, v)
}

// Add inserts v and reports whether the set changed.
func (s *StringSet) Add(v string) bool {
	if s.Contains(v) {
		return false
	}
	*s = append(*s, v)
	return true
}

// Remove deletes v and reports whether the set changed.
func (s *StringSet) Remove(v string) bool {
	i := slices.Index(*s, v)
	if i < 0 {
		return false
	}
	*s = slices.Delete(*s, i, i+1)
	return true
}

// Value implements driver.Valuer.
func (s StringSet) Value() (driver.Value, error) {
	return StringList(s).Value()
}

// Scan implements sql.Scanner.
func (s *StringSet) Scan(src any) error {
	var l StringList
	if err := l.Scan(src); err != nil {
		return err
	}
	*s = StringSet(l)
	return nil
}

// MarshalJSON renders a nil set as [] rather than null.
func (s StringSet) MarshalJSON() ([]byte, error) {
	return StringList(s).MarshalJSON()
}

// StringList is an ordered list of strings (duplicates allowed) stored as JSON.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	raw, err := scanJSONBytes(src)
	if err != nil {
		return err
	}
	out := StringList{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, (*[]string)(&out)); err != nil {
			return fmt.Errorf("scan StringList: %w", err)
		}
	}
	*l = out
	return nil
}

// MarshalJSON renders a nil list as [] rather than null.
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

func scanJSONBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported JSON column type %T", src)
	}
}
