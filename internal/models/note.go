// Package models defines the domain types shared by the notes client and the
// reference notes API.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ID is a server-assigned note identifier. The client treats it as opaque;
// on the wire it may be a JSON number or a JSON string.
type ID string

// String returns the identifier as text.
func (id ID) String() string { return string(id) }

// Int64 parses the identifier as a positive integer.
func (id ID) Int64() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// MarshalJSON encodes numeric identifiers as JSON numbers and everything else
// as JSON strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts a JSON number or a JSON string.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("note id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// IDFromInt formats a numeric identifier.
func IDFromInt(n int64) ID {
	return ID(strconv.FormatInt(n, 10))
}

// Note is a title/content pair with a stable identity.
type Note struct {
	ID      ID     `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// NoteMetadata is a lightweight description of a file in the vault.
type NoteMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
