package reaction

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Umairism/Teachers-Club/core"
)

// InitValidators registers the reaction validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterEnumValidation(validate, translator, "reaction_type", Types...)
}
