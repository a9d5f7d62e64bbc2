package validator

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/samber/lo"
)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// FieldError is a single failed rule.
type FieldError struct {
	// Field is the snake_case struct field name.
	Field string
	// Message is the translated, caller-facing message.
	Message string
}

// V10ValidationError lists failed fields in declaration order.
type V10ValidationError []FieldError

// Error implements the error interface. It reports the first failure only.
func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}
	return vs[0].Message
}

// First returns the first failure in declaration order.
func (vs V10ValidationError) First() FieldError {
	if len(vs) == 0 {
		return FieldError{}
	}
	return vs[0]
}

// Values returns the failures keyed by field name.
func (vs V10ValidationError) Values() map[string]string {
	out := make(map[string]string, len(vs))
	for _, fe := range vs {
		if _, ok := out[fe.Field]; !ok {
			out[fe.Field] = fe.Message
		}
	}
	return out
}

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewV10Validator constructs a V10Validator with English translations and custom rules.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(fieldLabel)

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	if err := v10CustomTranslation(validate, enTrans); err != nil {
		return nil, err
	}

	return &V10Validator{
		validate:   validate,
		translator: enTrans,
	}, nil
}

// Validate validates a struct and returns a V10ValidationError on failure.
func (v *V10Validator) Validate(data any) error {
	if err := v.validate.Struct(data); err != nil {
		var validateErrs validator.ValidationErrors
		if !errors.As(err, &validateErrs) {
			return err
		}

		errV10 := make(V10ValidationError, 0, len(validateErrs))
		for _, fe := range validateErrs {
			errV10 = append(errV10, FieldError{
				Field:   lo.SnakeCase(fe.StructField()),
				Message: fe.Translate(v.translator),
			})
		}

		return errV10
	}

	return nil
}

// fieldLabel prefers the `label` tag, then the json name, then the Go name.
func fieldLabel(fld reflect.StructField) string {
	if label := strings.TrimSpace(fld.Tag.Get("label")); label != "" {
		return label
	}

	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	default:
		return name
	}
}

func v10CustomTranslation(validate *validator.Validate, enTrans ut.Translator) error {
	return validate.RegisterTranslation("required", enTrans,
		func(ut ut.Translator) error {
			return ut.Add("required", "{0} cannot be empty", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, err := ut.T(fe.Tag(), fe.Field())
			if err != nil {
				slog.Warn("warning: error translating", "field", fe.Field(), "error", err)
				return fe.Error()
			}

			return t
		},
	)
}
