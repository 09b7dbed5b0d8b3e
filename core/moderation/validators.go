package moderation

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Umairism/Teachers-Club/core"
)

// InitValidators registers the report validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterEnumValidation(validate, translator, "report_reason", Reasons...)
	core.RegisterEnumValidation(validate, translator, "report_target", TargetTypes...)
}
