package directoryRepo

import "vecindo/models"

// UserDirectory defines read-only lookups against the platform's user base.
// Audience resolution queries run fresh at dispatch time; nothing here is
// cached by the repository.
type UserDirectory interface {
	// GetByID retrieves a directory entry. Returns (nil, nil) when the user
	// does not exist.
	GetByID(id string) (*models.User, error)
	// UsersWithRole retrieves the IDs of every user holding the role.
	UsersWithRole(role string) ([]string, error)
	// UsersInUnit retrieves the IDs of every user resident in the unit.
	UsersInUnit(unitID string) ([]string, error)
	// AllUserIDs retrieves every user ID in the system.
	AllUserIDs() ([]string, error)
	// CountWithRole counts users currently holding the role.
	CountWithRole(role string) (int, error)
	// CountInUnit counts users currently resident in the unit.
	CountInUnit(unitID string) (int, error)
	// CountAll counts every user in the system.
	CountAll() (int, error)
}
