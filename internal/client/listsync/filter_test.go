package listsync

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atinyakov/animaltrack/internal/models"
)

func TestFilter(t *testing.T) {
	animals := []models.Animal{
		{ID: "1", Name: "Rex", Location: "Farm A"},
		{ID: "2", Name: "Mimosa", Location: "Pasto Norte"},
		{ID: "3", Name: "Estrela", Location: "Curral"},
		{ID: "4", Name: "Ágata", Location: "FARM B"},
	}

	tests := []struct {
		text string
		want []string
	}{
		{"", []string{"1", "2", "3", "4"}},
		{"farm", []string{"1", "4"}},
		{"REX", []string{"1"}},
		{"r", []string{"1", "2", "3", "4"}},
		{"ágata", []string{"4"}},
		{"zebra", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := Filter(animals, tt.text)
			ids := make([]string, 0, len(got))
			for _, a := range got {
				ids = append(ids, a.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

// Every record is either kept or dropped according to the predicate, and
// the input is left alone.
func TestFilter_ExactPartition(t *testing.T) {
	animals := []models.Animal{
		{ID: "1", Name: "Rex", Location: "Farm A"},
		{ID: "2", Name: "rexona", Location: ""},
		{ID: "3", Name: "", Location: "Rexford"},
		{ID: "4", Name: "Bolt", Location: "Lot 4"},
	}
	before := append([]models.Animal(nil), animals...)

	for _, text := range []string{"rex", "REX", "o", "4", " ", "x f"} {
		got := Filter(animals, text)
		kept := map[string]bool{}
		for _, a := range got {
			kept[a.ID] = true
		}
		needle := strings.ToLower(text)
		for _, a := range animals {
			match := strings.Contains(strings.ToLower(a.Name), needle) ||
				strings.Contains(strings.ToLower(a.Location), needle)
			assert.Equal(t, match, kept[a.ID], "text %q id %s", text, a.ID)
		}
	}
	assert.Equal(t, before, animals)
}
