package userservice

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/sushihentaime/bloghub/internal/common"
)

func TestAuthorizeMutation(t *testing.T) {
	owner := uuid.New()

	testCases := []struct {
		name      string
		principal uuid.UUID
		owner     uuid.UUID
		err       error
	}{
		{name: "owner", principal: owner, owner: owner, err: nil},
		{name: "other user", principal: uuid.New(), owner: owner, err: common.ErrForbidden},
		{name: "anonymous", principal: uuid.Nil, owner: owner, err: common.ErrForbidden},
		{name: "anonymous on ownerless", principal: uuid.Nil, owner: uuid.Nil, err: common.ErrForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.err, AuthorizeMutation(tc.principal, tc.owner))
		})
	}
}
