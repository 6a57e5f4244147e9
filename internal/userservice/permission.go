package userservice

import (
	"github.com/google/uuid"

	"github.com/sushihentaime/bloghub/internal/common"
)

// AuthorizeMutation allows a change to a resource only when the principal owns it.
// An anonymous principal never owns anything.
func AuthorizeMutation(principalID, ownerID uuid.UUID) error {
	if principalID == uuid.Nil || principalID != ownerID {
		return common.ErrForbidden
	}

	return nil
}
