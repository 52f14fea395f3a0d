// Package catalog serves the seeded automation templates.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/autoflow/autoflow/internal/model"
)

// ErrTemplateNotFound is returned for names that are not in the catalog.
var ErrTemplateNotFound = errors.New("template not found")

// templatePrefix is the free-text convention that selects a template by name.
const templatePrefix = "use template:"

//go:embed templates.json
var seed []byte

// Summary is the listing view of a template.
type Summary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Catalog is an immutable, ordered set of templates.
type Catalog struct {
	templates []model.Template
	byName    map[string]int
}

// New builds a catalog. Names must be unique ignoring case.
func New(templates []model.Template) (*Catalog, error) {
	c := &Catalog{
		templates: make([]model.Template, len(templates)),
		byName:    make(map[string]int, len(templates)),
	}
	copy(c.templates, templates)
	for i, t := range c.templates {
		key := strings.ToLower(strings.TrimSpace(t.Name))
		if key == "" {
			return nil, fmt.Errorf("template %q has no name", t.ID)
		}
		if _, dup := c.byName[key]; dup {
			return nil, fmt.Errorf("duplicate template name %q", t.Name)
		}
		c.byName[key] = i
	}
	return c, nil
}

// seedTemplate mirrors model.Template but keeps blueprint bodies as JSON
// objects so the seed file stays readable.
type seedTemplate struct {
	model.Template
	MakeJSON json.RawMessage `json:"make_json"`
	N8nJSON  json.RawMessage `json:"n8n_json"`
}

// Load decodes a template list in the seed file format.
func Load(data []byte) ([]model.Template, error) {
	var raw []seedTemplate
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}

	templates := make([]model.Template, 0, len(raw))
	for _, r := range raw {
		t := r.Template
		var err error
		if t.MakeJSON, err = indent(r.MakeJSON); err != nil {
			return nil, fmt.Errorf("template %s make_json: %w", t.ID, err)
		}
		if t.N8nJSON, err = indent(r.N8nJSON); err != nil {
			return nil, fmt.Errorf("template %s n8n_json: %w", t.ID, err)
		}
		templates = append(templates, t)
	}
	return templates, nil
}

func indent(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", errors.New("missing blueprint")
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Default returns the catalog built from the embedded seed file.
func Default() (*Catalog, error) {
	templates, err := Load(seed)
	if err != nil {
		return nil, err
	}
	return New(templates)
}

// List returns template summaries in seed order.
func (c *Catalog) List() []Summary {
	out := make([]Summary, 0, len(c.templates))
	for _, t := range c.templates {
		out = append(out, Summary{
			ID:          t.ID,
			Name:        t.Name,
			Category:    t.Category,
			Description: t.Description,
			Tags:        t.Tags,
		})
	}
	return out
}

// Get looks a template up by name, ignoring case.
func (c *Catalog) Get(name string) (*model.Template, error) {
	i, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, ErrTemplateNotFound
	}
	t := c.templates[i]
	return &t, nil
}

// Match reports whether description selects a template with "use template: <name>".
func (c *Catalog) Match(description string) (*model.Template, bool) {
	trimmed := strings.TrimSpace(description)
	if len(trimmed) < len(templatePrefix) || !strings.EqualFold(trimmed[:len(templatePrefix)], templatePrefix) {
		return nil, false
	}
	t, err := c.Get(trimmed[len(templatePrefix):])
	if err != nil {
		return nil, false
	}
	return t, true
}

// BlueprintFor returns the pre-authored JSON body of t for the platform.
func BlueprintFor(t *model.Template, p model.Platform) string {
	return t.Blueprint(p)
}
