package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// BindForm binds an urlencoded or multipart body into out. When validation
// fails the returned field errors are named after the form fields.
func BindForm(ctx *gin.Context, out interface{}) ([]FieldError, error) {
	err := ctx.ShouldBindWith(out, binding.Form)
	if err != nil {
		return fieldErrors(err, out), err
	}

	return nil, nil
}

func fieldErrors(err error, out interface{}) []FieldError {
	rootType := baseStructType(out)

	var validatorError validator.ValidationErrors

	if !errors.As(err, &validatorError) {
		return nil
	}

	fields := make([]FieldError, 0, len(validatorError))

	for _, fieldError := range validatorError {
		rule := fieldError.Tag()
		param := fieldError.Param()

		fields = append(fields, FieldError{
			Field:   formPathFromValidatorError(rootType, fieldError),
			Rule:    rule,
			Param:   param,
			Message: validationMessage(rule, param),
		})
	}

	return fields
}

func baseStructType(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t != nil && t.Kind() == reflect.Struct {
		return t
	}

	return nil
}

func formPathFromValidatorError(rootType reflect.Type, fieldError validator.FieldError) string {
	// Namespace format is usually "<StructName>.<Field>[.<NestedField>...]".
	namespace := fieldError.StructNamespace()
	if namespace == "" {
		return fieldError.Field()
	}

	parts := strings.Split(namespace, ".")

	if rootType != nil && rootType.Name() != "" && parts[0] == rootType.Name() {
		parts = parts[1:]
	}

	if path := mapStructPathToFormPath(rootType, parts); path != "" {
		return path
	}

	return fieldError.Field()
}

func mapStructPathToFormPath(rootType reflect.Type, parts []string) string {
	current := rootType
	out := make([]string, 0, len(parts))

	for _, part := range parts {
		if part == "" {
			continue
		}

		name := part
		var next reflect.Type

		if current != nil {
			for current.Kind() == reflect.Pointer {
				current = current.Elem()
			}

			if current.Kind() == reflect.Struct {
				if sf, ok := current.FieldByName(part); ok {
					name = fieldNameFromStructField(sf)
					next = sf.Type
				}
			}
		}

		out = append(out, name)
		current = next
	}

	return strings.Join(out, ".")
}

// form tag first, then json, then the Go name
func fieldNameFromStructField(sf reflect.StructField) string {
	for _, key := range []string{"form", "json"} {
		name, _, _ := strings.Cut(sf.Tag.Get(key), ",")
		if name != "" && name != "-" {
			return name
		}
	}

	return sf.Name
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param + " characters"
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
