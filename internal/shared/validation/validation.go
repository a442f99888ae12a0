package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-playground/validator/v10"

	"bookshelf-backend/internal/shared/apperror"
)

// Validatable is implemented by request DTOs (ozzo-validation style).
type Validatable interface {
	Validate() error
}

var registerOnce sync.Once

// RegisterGinTagNames makes gin's binding validator report fields by their
// form/json names instead of Go field names.
func RegisterGinTagNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldName)
	})
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name := strings.Split(f.Tag.Get(tag), ",")[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// Check runs v.Validate and converts failures into a 422 AppError.
func Check(v Validatable) error {
	if err := v.Validate(); err != nil {
		return ToAppError(err)
	}
	return nil
}

// ToAppError converts ozzo and go-playground validation errors into a
// field-keyed 422 error. Anything else comes back unchanged.
func ToAppError(err error) error {
	if err == nil {
		return nil
	}

	var ozzoErrs ozzo.Errors
	if errors.As(err, &ozzoErrs) {
		fields := map[string][]string{}
		flattenOzzo("", ozzoErrs, fields)
		return apperror.ValidationFields(fields)
	}

	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		fields := map[string][]string{}
		for _, fe := range vErrs {
			name := fe.Field()
			fields[name] = append(fields[name], messageForTag(name, fe))
		}
		return apperror.ValidationFields(fields)
	}

	var internal ozzo.InternalError
	if errors.As(err, &internal) {
		return apperror.Internal(err)
	}

	return err
}

func flattenOzzo(prefix string, errs ozzo.Errors, out map[string][]string) {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		name := k
		if prefix != "" {
			name = prefix + "." + k
		}

		var nested ozzo.Errors
		if errors.As(errs[k], &nested) {
			flattenOzzo(name, nested, out)
			continue
		}
		out[name] = append(out[name], sentence(name, errs[k].Error()))
	}
}

// sentence renders "cannot be blank" as "The title cannot be blank."
func sentence(field, msg string) string {
	label := strings.ReplaceAll(field, "_", " ")
	return fmt.Sprintf("The %s %s.", label, strings.TrimSuffix(msg, "."))
}

func messageForTag(field string, fe validator.FieldError) string {
	label := strings.ReplaceAll(field, "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", label)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", label)
	case "min":
		return fmt.Sprintf("The %s must be at least %s.", label, fe.Param())
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s.", label, fe.Param())
	case "gte":
		return fmt.Sprintf("The %s must be greater than or equal to %s.", label, fe.Param())
	case "lte":
		return fmt.Sprintf("The %s must be less than or equal to %s.", label, fe.Param())
	case "datetime":
		return fmt.Sprintf("The %s does not match the format %s.", label, fe.Param())
	case "dive":
		return fmt.Sprintf("The %s contains an invalid value.", label)
	default:
		return fmt.Sprintf("The %s is invalid.", label)
	}
}
