package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/jcodes2003/quizzersupa-sub000/internal/errors"
	"github.com/jcodes2003/quizzersupa-sub000/internal/models"
)

// Validator wraps the struct validator with our custom rules registered.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	RegisterCustomValidators(v)
	return &Validator{validate: v}
}

// Validate runs struct-tag validation and converts failures into our typed
// ValidationErrors.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		if ve := apperrors.ToValidationErrors(err); len(ve) > 0 {
			return ve
		}
		return err
	}
	return nil
}

// Custom validation functions

func ValidateQuestionType(fl validator.FieldLevel) bool {
	validTypes := []models.QuestionType{
		models.MultipleChoice,
		models.Identification,
		models.Enumeration,
		models.LongAnswer,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func ValidateSubmissionSource(fl validator.FieldLevel) bool {
	validSources := []models.SubmissionSource{
		models.SourceManual,
		models.SourceAutoTimeout,
		models.SourceAutoLeave,
	}

	value := fl.Field().String()
	for _, validSource := range validSources {
		if string(validSource) == value {
			return true
		}
	}
	return false
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", ValidateQuestionType)
	validate.RegisterValidation("submission_source", ValidateSubmissionSource)

	// Register custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
