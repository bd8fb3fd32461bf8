package handler

import (
    "fmt"
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10"
)

// FormValidator implements echo.Validator with go-playground/validator.
// Field names in errors are the form field names, not the Go names.
type FormValidator struct {
    v *validator.Validate
}

// NewFormValidator builds a validator with the directory's custom rules.
func NewFormValidator() *FormValidator {
    v := validator.New(validator.WithRequiredStructEnabled())
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
        if name == "" || name == "-" {
            return f.Name
        }
        return name
    })
    _ = v.RegisterValidation("state", stateValidator)
    return &FormValidator{v: v}
}

// Validate implements echo.Validator.
func (fv *FormValidator) Validate(i any) error {
    return fv.v.Struct(i)
}

// stateValidator accepts two ASCII letters.
func stateValidator(fl validator.FieldLevel) bool {
    s := fl.Field().String()
    if len(s) != 2 {
        return false
    }
    for _, r := range s {
        if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
            return false
        }
    }
    return true
}

// fieldErrors maps a validation failure to one message per form field.
// ok is false when err is not a validation failure.
func fieldErrors(err error) (map[string]string, bool) {
    verrs, ok := err.(validator.ValidationErrors)
    if !ok {
        return nil, false
    }
    out := make(map[string]string, len(verrs))
    for _, e := range verrs {
        field := e.Field()
        switch e.Tag() {
        case "required":
            out[field] = "This field is required."
        case "state":
            out[field] = "Use the two-letter state code."
        case "url":
            out[field] = "Enter a valid URL."
        case "max":
            out[field] = fmt.Sprintf("Use at most %s characters.", e.Param())
        default:
            out[field] = fmt.Sprintf("Invalid value (%s).", e.Tag())
        }
    }
    return out, true
}
