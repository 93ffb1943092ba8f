// Package access holds the role permission registry. Enforcement happens in
// the transport layer above this core; the registry answers whether a role
// may perform an action on an entity kind.
package access

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// rolePermissions is the YAML shape: one role with its per-entity actions.
type rolePermissions struct {
	Role     string              `yaml:"role"`
	Entities map[string][]string `yaml:"entities"`
}

type permissionsFile struct {
	Roles []rolePermissions `yaml:"roles"`
}

// Registry answers permission queries from the embedded role configuration.
type Registry struct {
	roles map[string]map[string]map[string]bool
	mu    sync.RWMutex
}

// NewRegistry creates a registry from the embedded YAML files.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		roles: make(map[string]map[string]map[string]bool),
	}
	if err := r.loadFile("roles"); err != nil {
		return nil, fmt.Errorf("failed to load role permissions: %w", err)
	}
	return r, nil
}

func (r *Registry) loadFile(name string) error {
	filename := fmt.Sprintf("config/%s.yaml", name)
	data, err := configFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	var file permissionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range file.Roles {
		entities := make(map[string]map[string]bool, len(role.Entities))
		for entity, actions := range role.Entities {
			set := make(map[string]bool, len(actions))
			for _, a := range actions {
				set[strings.ToLower(a)] = true
			}
			entities[strings.ToLower(entity)] = set
		}
		r.roles[strings.ToLower(role.Role)] = entities
	}
	return nil
}

// Can reports whether the role may perform the action on the entity kind.
// A "*" entity or action entry in the configuration grants broadly.
func (r *Registry) Can(role, entity, action string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entities, ok := r.roles[strings.ToLower(role)]
	if !ok {
		return false
	}
	for _, key := range []string{strings.ToLower(entity), "*"} {
		if actions, ok := entities[key]; ok {
			if actions[strings.ToLower(action)] || actions["*"] {
				return true
			}
		}
	}
	return false
}

// Roles returns the configured role names.
func (r *Registry) Roles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.roles))
	for name := range r.roles {
		names = append(names, name)
	}
	return names
}
