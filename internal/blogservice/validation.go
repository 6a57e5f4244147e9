package blogservice

import (
	"github.com/sushihentaime/bloghub/internal/common"
	"github.com/sushihentaime/bloghub/internal/slug"
)

const maxContentLength = 100000

func validateTitle(v *common.Validator, title string) {
	v.Check(title != "", "title", "must be provided")
	v.Check(v.CheckStringLength(title, 3, 100), "title", "must be between 3 and 100 characters long")
	v.Check(slug.DeriveBase(title) != "", "title", "must contain at least one letter or number")
}

func validateContent(v *common.Validator, content string) {
	v.Check(content != "", "content", "must be provided")
	v.Check(v.CheckStringLength(content, 1, maxContentLength), "content", "must not be more than 100000 characters long")
}

func validateImage(v *common.Validator, image string) {
	v.Check(image != "", "image", "must be provided")
	v.Check(v.CheckURL(image), "image", "must be a valid http or https URL")
}
