package importer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/julianstephens/daylog/internal/models"
)

// jsonDocument accepts a bare partial snapshot or a state file, whose
// collections sit under "state".
type jsonDocument struct {
	models.PartialSnapshot
	State *models.PartialSnapshot `json:"state"`
}

func parseJSON(r io.Reader) (models.PartialSnapshot, error) {
	var doc jsonDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return models.PartialSnapshot{}, fmt.Errorf("failed to parse json: %w", err)
	}
	p := doc.PartialSnapshot
	if doc.State != nil {
		p = *doc.State
	}
	if p.Journal == nil {
		p.Journal = map[string]string{}
	}
	for i, h := range p.Habits {
		if h.CompletedDates == nil {
			p.Habits[i].CompletedDates = []string{}
		}
	}
	for i, t := range p.Todos {
		if t.Type == "" {
			p.Todos[i].Type = models.TodoDaily
		}
	}
	return p, nil
}
