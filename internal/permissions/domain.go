package permissions

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/halcyon-edu/campus/internal/shared"
)

// Permission represents an atomic resource:action capability. The Name is
// the stable wire contract shared with every authorization check site.
type Permission struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Resource    string    `json:"resource"`
	Action      string    `json:"action"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ModuleAction is one entry in the grouped-by-resource catalog view.
type ModuleAction struct {
	Action     string `json:"action"`
	Permission string `json:"permission"`
}

var namePartPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// BuildName composes the canonical resource:action permission name.
func BuildName(resource, action string) (string, error) {
	resource = strings.ToLower(strings.TrimSpace(resource))
	action = strings.ToLower(strings.TrimSpace(action))
	if !namePartPattern.MatchString(resource) {
		return "", fmt.Errorf("%w: invalid resource %q", shared.ErrValidation, resource)
	}
	if !namePartPattern.MatchString(action) {
		return "", fmt.Errorf("%w: invalid action %q", shared.ErrValidation, action)
	}
	return resource + ":" + action, nil
}
