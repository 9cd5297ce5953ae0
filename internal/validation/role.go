package validation

import (
	"fmt"

	"github.com/tripdiary/tripadmin/internal/model"
)

// ValidateRole accepts only the roles the user table allows
func ValidateRole(role string) error {
	if !model.ValidRole(role) {
		return fmt.Errorf("invalid role %q (must be %s or %s)", role, model.RoleUser, model.RoleAdmin)
	}
	return nil
}
