package validator

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields under their form/json names so messages line up with
	// what the browser submitted.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})

	_ = v.RegisterValidation("mindigits", func(fl validator.FieldLevel) bool {
		min, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return CountDigits(fl.Field().String()) >= min
	})

	return v
}

// CountDigits returns the number of decimal digits in s.
func CountDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// Validate validates a struct using go-playground/validator tags. A field can
// carry a `msg` tag to override the generated message for any failure, or a
// `msg_<tag>` tag (for example `msg_mindigits`) to override a single rule.
func Validate(s any) error {
	if err := validate.Struct(s); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return &ValidationError{Errors: validationErrors, typ: structType(s)}
		}
		return err
	}
	return nil
}

func structType(s any) reflect.Type {
	t := reflect.TypeOf(s)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	return t
}

// ValidationError wraps validator.ValidationErrors with a user-friendly message.
type ValidationError struct {
	Errors validator.ValidationErrors
	typ    reflect.Type
	extra  [][2]string
}

// NewFieldError reports a failure that struct tags cannot express, such as a
// value that must belong to a list known only at runtime.
func NewFieldError(field, msg string) *ValidationError {
	return &ValidationError{extra: [][2]string{{field, msg}}}
}

func (e *ValidationError) Error() string {
	var msgs []string
	for _, err := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("campo '%s' %s", err.Field(), e.message(err)))
	}
	for _, f := range e.extra {
		msgs = append(msgs, fmt.Sprintf("campo '%s' %s", f[0], f[1]))
	}
	return strings.Join(msgs, "; ")
}

// Fields returns a map of field names to error messages.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Errors))
	for _, err := range e.Errors {
		fields[err.Field()] = e.message(err)
	}
	for _, f := range e.extra {
		fields[f[0]] = f[1]
	}
	return fields
}

// First returns the message of the first failing field, in struct order.
func (e *ValidationError) First() string {
	if len(e.Errors) > 0 {
		return e.message(e.Errors[0])
	}
	if len(e.extra) > 0 {
		return e.extra[0][1]
	}
	return ""
}

func (e *ValidationError) message(fe validator.FieldError) string {
	if e.typ != nil {
		if f, ok := e.typ.FieldByName(fe.StructField()); ok {
			if msg := f.Tag.Get("msg_" + fe.Tag()); msg != "" {
				return msg
			}
			if msg := f.Tag.Get("msg"); msg != "" {
				return msg
			}
		}
	}
	return msgForTag(fe)
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "email":
		return "debe ser un correo válido"
	case "min":
		return fmt.Sprintf("debe tener al menos %s caracteres", fe.Param())
	case "max":
		return fmt.Sprintf("debe tener como máximo %s caracteres", fe.Param())
	case "gte":
		return fmt.Sprintf("debe ser mayor o igual a %s", fe.Param())
	case "lte":
		return fmt.Sprintf("debe ser menor o igual a %s", fe.Param())
	case "mindigits":
		return fmt.Sprintf("debe tener al menos %s dígitos", fe.Param())
	case "url":
		return "debe ser una URL válida"
	case "oneof":
		return fmt.Sprintf("debe ser uno de: %s", fe.Param())
	default:
		return fmt.Sprintf("no cumple la validación '%s'", fe.Tag())
	}
}
