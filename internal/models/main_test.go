package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnimal_DecodeWireNames(t *testing.T) {
	raw := `{"id":"1","fid":"f1","nome":"Rex","localizacao":"Farm A","raca":"Angus",
		"tipoAnimal":"bovino","codigoRastreamento":"BR-001","statusAnimal":"ativo"}`

	var a Animal
	require.NoError(t, json.Unmarshal([]byte(raw), &a))

	assert.Equal(t, Animal{
		ID:           "1",
		FID:          "f1",
		Name:         "Rex",
		Location:     "Farm A",
		Breed:        "Angus",
		AnimalType:   "bovino",
		TrackingCode: "BR-001",
		Status:       "ativo",
	}, a)
}

func TestText_Scalars(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Text
	}{
		{"string", `"ok"`, "ok"},
		{"number", `3`, "3"},
		{"float", `1.5`, "1.5"},
		{"bool", `true`, "true"},
		{"null", `null`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Text
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestText_RejectsComposite(t *testing.T) {
	var got Text
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &got))
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &got))
}

func TestSession_RoundTrip(t *testing.T) {
	in := Session(`{"token":"abc","user":{"id":7}}`)

	b, err := json.Marshal(struct {
		S Session `json:"s"`
	}{in})
	require.NoError(t, err)

	var out struct {
		S Session `json:"s"`
	}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.True(t, in.Equal(out.S), "got %s", out.S)
}
