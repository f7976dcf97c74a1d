package auth

import (
	"errors"
	"fmt"

	directoryRepo "vecindo/database/repository/directory"
	"vecindo/models"
	"vecindo/utils"
)

// ErrInvalidCredential signals a credential that failed verification. The
// session is refused before it ever reaches the registry.
var ErrInvalidCredential = errors.New("invalid credential")

// Gate validates a credential at session-open time. The resulting identity
// is attached to the session for the remainder of its life; it is never
// re-validated mid-session.
type Gate interface {
	Authenticate(rawCredential string) (*models.UserIdentity, error)
}

// JWTGate verifies HS256 bearer tokens and resolves the subject against the
// user directory.
type JWTGate struct {
	Directory directoryRepo.UserDirectory
}

// Authenticate parses and validates the token, then confirms the subject
// still exists in the directory. Any failure maps to ErrInvalidCredential.
func (g *JWTGate) Authenticate(rawCredential string) (*models.UserIdentity, error) {
	if rawCredential == "" {
		return nil, fmt.Errorf("%w: token missing", ErrInvalidCredential)
	}

	claims, err := utils.ExtractClaimsFromToken(rawCredential)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	userID, _ := claims["sub"].(string)
	user, err := g.Directory.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve identity %s: %w", userID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: unknown subject %s", ErrInvalidCredential, userID)
	}

	return &models.UserIdentity{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}, nil
}
