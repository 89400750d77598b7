package listsync

import (
	"strings"

	"github.com/atinyakov/animaltrack/internal/models"
)

// Filter returns the animals whose name or location contains text,
// ignoring case, in their original order. An empty text matches everything.
// animals is not modified.
func Filter(animals []models.Animal, text string) []models.Animal {
	needle := strings.ToLower(text)
	out := make([]models.Animal, 0, len(animals))
	for _, a := range animals {
		if strings.Contains(strings.ToLower(a.Name), needle) ||
			strings.Contains(strings.ToLower(a.Location), needle) {
			out = append(out, a)
		}
	}
	return out
}
