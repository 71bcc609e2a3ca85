package assistant

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed intents.yaml
var defaultIntents []byte

// Action names an intent may trigger.
const (
	ActionSubmitTimesheet          = "submit_timesheet"
	ActionFillVacationLeave        = "fill_vacation_leave"
	ActionApprovePendingTimesheets = "approve_pending_timesheets"
	ActionUndo                     = "undo"
)

// Intent maps input patterns to a canned reply and optionally an action.
type Intent struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
	Reply    string   `yaml:"reply"`
	Action   string   `yaml:"action"`
	Confirm  bool     `yaml:"confirm"`
}

// Persona is one assistant character.
type Persona struct {
	Name     string   `yaml:"-"`
	Greeting string   `yaml:"greeting"`
	Fallback string   `yaml:"fallback"`
	Intents  []Intent `yaml:"intents"`
}

// Catalog holds the personas by name.
type Catalog map[string]*Persona

var knownActions = map[string]bool{
	ActionSubmitTimesheet:          true,
	ActionFillVacationLeave:        true,
	ActionApprovePendingTimesheets: true,
	ActionUndo:                     true,
}

// LoadCatalog parses an intent table.
func LoadCatalog(data []byte) (Catalog, error) {
	var doc struct {
		Personas map[string]*Persona `yaml:"personas"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse intents: %w", err)
	}
	if len(doc.Personas) == 0 {
		return nil, fmt.Errorf("parse intents: no personas")
	}
	for name, p := range doc.Personas {
		if p == nil {
			return nil, fmt.Errorf("persona %q is empty", name)
		}
		p.Name = name
		for i := range p.Intents {
			in := &p.Intents[i]
			if len(in.Patterns) == 0 {
				return nil, fmt.Errorf("persona %q intent %q has no patterns", name, in.Name)
			}
			if in.Action != "" && !knownActions[in.Action] {
				return nil, fmt.Errorf("persona %q intent %q: unknown action %q", name, in.Name, in.Action)
			}
			for j, pattern := range in.Patterns {
				in.Patterns[j] = strings.ToLower(pattern)
			}
		}
	}
	return Catalog(doc.Personas), nil
}

// DefaultCatalog returns the built-in julia and pando personas.
func DefaultCatalog() (Catalog, error) {
	return LoadCatalog(defaultIntents)
}

// Match returns the first intent with a pattern contained in text.
func (p *Persona) Match(text string) (*Intent, bool) {
	lower := strings.ToLower(text)
	for i := range p.Intents {
		for _, pattern := range p.Intents[i].Patterns {
			if strings.Contains(lower, pattern) {
				return &p.Intents[i], true
			}
		}
	}
	return nil, false
}
