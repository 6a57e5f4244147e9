package commentservice

import "github.com/sushihentaime/bloghub/internal/common"

func validateTitle(v *common.Validator, title string) {
	v.Check(title != "", "title", "must be provided")
	v.Check(v.CheckStringLength(title, 1, 100), "title", "must not be more than 100 characters long")
}

func validateDescription(v *common.Validator, description string) {
	v.Check(description != "", "description", "must be provided")
	v.Check(v.CheckStringLength(description, 1, 2000), "description", "must not be more than 2000 characters long")
}

func validateRating(v *common.Validator, rating int) {
	v.Check(v.CheckIntRange(rating, 1, 5), "rating", "must be between 1 and 5")
}
