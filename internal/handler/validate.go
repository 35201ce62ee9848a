package handler

import (
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10"
)

// Validator adapts go-playground/validator to echo.Validator.  Field names in
// errors are the JSON names so the page can highlight the right input.
type Validator struct {
    v *validator.Validate
}

func NewValidator() *Validator {
    v := validator.New(validator.WithRequiredStructEnabled())
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
        if name == "-" {
            return ""
        }
        return name
    })
    return &Validator{v: v}
}

func (cv *Validator) Validate(i interface{}) error {
    return cv.v.Struct(i)
}

// fieldMessages turns validator errors into field -> message pairs.
func fieldMessages(errs validator.ValidationErrors) map[string]string {
    out := make(map[string]string, len(errs))
    for _, fe := range errs {
        out[fe.Field()] = fieldMessage(fe)
    }
    return out
}

func fieldMessage(fe validator.FieldError) string {
    switch fe.Tag() {
    case "required":
        return "This field is required."
    case "email":
        return "Enter a valid email address."
    case "e164":
        return "Enter the phone number in international format, e.g. +27821234567."
    case "min":
        return "Must be at least " + fe.Param() + "."
    case "max":
        return "Must be at most " + fe.Param() + "."
    case "gt":
        return "Must be greater than " + fe.Param() + "."
    case "oneof":
        return "Must be one of: " + fe.Param() + "."
    case "numeric":
        return "Digits only."
    }
    return "Invalid value."
}
