package service

import "contenthub/internal/model"

// Caller identifies who invokes an operation. The zero value is anonymous.
type Caller struct {
	Authenticated bool
	UserID        uint
	Email         string
	Role          model.Role
}

// Anonymous is the unauthenticated caller.
var Anonymous = Caller{}

// seesDisabled reports whether disabled tree records are visible.
func (c Caller) seesDisabled() bool {
	return c.Authenticated
}

func requireTreeEditor(c Caller) error {
	if !c.Authenticated {
		return unauthorized("authentication required")
	}
	if !c.Role.CanEditTree() {
		return forbidden("requires ADMIN or EDITOR role")
	}
	return nil
}

func requireAuthenticated(c Caller) error {
	if !c.Authenticated {
		return unauthorized("authentication required")
	}
	return nil
}

func requireAdmin(c Caller) error {
	if !c.Authenticated {
		return unauthorized("authentication required")
	}
	if c.Role != model.RoleAdmin {
		return forbidden("requires ADMIN role")
	}
	return nil
}
