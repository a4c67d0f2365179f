package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ProviderID is an identifier assigned by an external provider.
// The bracket provider sends integers, local callers often send strings, both decode.
type ProviderID string

// String returns the identifier as text
func (id ProviderID) String() string {
	return string(id)
}

// IsZero reports whether the identifier is unset
func (id ProviderID) IsZero() bool {
	return id == ""
}

// UnmarshalJSON accepts a JSON number, a JSON string or null
func (id *ProviderID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid identifier: %w", err)
		}
		*id = ProviderID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid identifier %s: %w", data, err)
	}
	*id = ProviderID(n.String())
	return nil
}

// MarshalJSON writes canonical integers as JSON numbers and everything else as strings
func (id ProviderID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if isCanonicalInteger(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func isCanonicalInteger(s string) bool {
	if s == "" || len(s) > 18 {
		return false
	}
	if s[0] == '0' && len(s) > 1 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
