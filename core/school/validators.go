package school

import (
	"github.com/go-playground/validator/v10"

	"github.com/moh-Adedamola/molek-records/core"
)

var (
	classLevelTag  = "classlevel"
	classLevelText = "must be a valid class level"
)

func init() {
	_ = core.Validate.RegisterValidation(classLevelTag, classLevelValidation)
	core.RegisterCustomTranslation(classLevelTag, classLevelText)
}

// classLevelValidation only allows levels on the class ladder.
func classLevelValidation(fl validator.FieldLevel) bool {
	return IsClassLevel(fl.Field().String())
}
