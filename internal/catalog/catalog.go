package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/nmorales-dev/localchat-backend/pkg/enums"
)

// Model is one installed runtime model as recorded in the catalog file.
type Model struct {
	Name string `json:"name"`
}

// Catalog is the load-once model inventory with a keyword deny-list. Admins
// see the full inventory; every other role gets the filtered view. Keyword
// matching is a case-sensitive substring check against the model name.
type Catalog struct {
	models     []Model
	restricted []string
}

// New builds a catalog from an in-memory model list.
func New(models []Model, restrictedKeywords []string) *Catalog {
	return &Catalog{models: models, restricted: restrictedKeywords}
}

// Load reads the catalog file produced by the model discovery tool. A missing
// or corrupt file is a startup failure; callers should treat it as fatal.
func Load(path string, restrictedKeywords []string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model catalog %s: %w", path, err)
	}
	var models []Model
	if err := json.Unmarshal(raw, &models); err != nil {
		return nil, fmt.Errorf("parsing model catalog %s: %w", path, err)
	}
	return New(models, restrictedKeywords), nil
}

// Visible returns the models the given role may see and use.
func (c *Catalog) Visible(role enums.Role) []Model {
	if role == enums.RoleAdmin {
		return append([]Model(nil), c.models...)
	}
	visible := make([]Model, 0, len(c.models))
	for _, m := range c.models {
		if !c.isRestricted(m.Name) {
			visible = append(visible, m)
		}
	}
	return visible
}

// Allowed reports whether the role may select the named model. Unknown models
// are never allowed.
func (c *Catalog) Allowed(role enums.Role, name string) bool {
	for _, m := range c.Visible(role) {
		if m.Name == name {
			return true
		}
	}
	return false
}

// Len returns the total inventory size regardless of role.
func (c *Catalog) Len() int {
	return len(c.models)
}

func (c *Catalog) isRestricted(name string) bool {
	for _, keyword := range c.restricted {
		if keyword != "" && strings.Contains(name, keyword) {
			return true
		}
	}
	return false
}
