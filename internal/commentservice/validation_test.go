package commentservice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sushihentaime/bloghub/internal/common"
)

func TestValidateRating(t *testing.T) {
	for rating, valid := range map[int]bool{-1: false, 0: false, 1: true, 3: true, 5: true, 6: false} {
		v := common.NewValidator()
		validateRating(v, rating)
		assert.Equal(t, valid, v.Valid(), "rating %d", rating)
	}
}

func TestValidateText(t *testing.T) {
	v := common.NewValidator()
	validateTitle(v, strings.Repeat("a", 101))
	validateDescription(v, strings.Repeat("a", 2001))
	assert.Contains(t, v.Errors, "title")
	assert.Contains(t, v.Errors, "description")

	v = common.NewValidator()
	validateTitle(v, "ok")
	validateDescription(v, "fine")
	assert.True(t, v.Valid())
}
