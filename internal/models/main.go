// Package models defines the core data structures for sessions and animals.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Session is the authentication payload returned by the remote login call.
// Its shape belongs to the remote service, so it is kept as raw JSON and
// persisted byte for byte.
type Session json.RawMessage

// MarshalJSON returns the raw payload.
func (s Session) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return s, nil
}

// UnmarshalJSON stores a copy of data.
func (s *Session) UnmarshalJSON(data []byte) error {
	*s = append((*s)[:0], data...)
	return nil
}

// Equal reports whether two sessions carry the same payload.
func (s Session) Equal(other Session) bool {
	return bytes.Equal(s, other)
}

// Animal is a single tracked animal as served by the remote API.
type Animal struct {
	// ID is the stable list key.
	ID string `json:"id"`
	// FID is the server identity used for update and delete.
	FID string `json:"fid"`
	// Name of the animal.
	Name string `json:"nome"`
	// Location where the animal currently is.
	Location string `json:"localizacao"`
	// Breed of the animal.
	Breed string `json:"raca"`
	// AnimalType is the species or category.
	AnimalType string `json:"tipoAnimal"`
	// TrackingCode is the tag or chip identifier.
	TrackingCode string `json:"codigoRastreamento"`
	// Status is a free-form status text.
	Status Text `json:"statusAnimal"`
}

// AnimalUpdate is the partial update accepted by the remote API.
type AnimalUpdate struct {
	FID    string `json:"fid"`
	Name   string `json:"nome"`
	Status string `json:"statusAnimal"`
}

// Text is a string that also accepts JSON numbers and booleans, which the
// remote service uses interchangeably for some fields.
type Text string

// UnmarshalJSON accepts any JSON scalar. null leaves the value empty.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*t = ""
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	case data[0] == '{', data[0] == '[':
		return fmt.Errorf("text: unexpected JSON value %s", strings.TrimSpace(string(data)))
	default:
		*t = Text(data)
		return nil
	}
}

// String returns the text form.
func (t Text) String() string {
	return string(t)
}
