package models

import "time"

// User roles known to the platform.
const (
	RoleAdmin        = "ADMIN"
	RoleComplexAdmin = "COMPLEX_ADMIN"
	RoleResident     = "RESIDENT"
	RoleStaff        = "STAFF"
)

// User is a directory entry. This service only reads users; account
// management lives elsewhere.
type User struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Role      string    `bson:"role" json:"role"`
	UnitID    string    `bson:"unitId,omitempty" json:"unitId,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// UserIdentity is the verified identity attached to a session at open time.
type UserIdentity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
