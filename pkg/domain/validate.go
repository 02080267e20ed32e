package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func entityValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		if err := v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
			_, err := Date(fl.Field().String()).Time()
			return err == nil
		}); err != nil {
			panic(fmt.Errorf("register date validation: %w", err))
		}
		v.RegisterStructValidation(func(sl validator.StructLevel) {
			e := sl.Current().Interface().(Epic)
			if e.StartDate != "" && e.EndDate != "" && e.StartDate.Compare(e.EndDate) > 0 {
				sl.ReportError(e.EndDate, "endDate", "EndDate", "after_start", "")
			}
		}, Epic{})
		v.RegisterStructValidation(func(sl validator.StructLevel) {
			s := sl.Current().Interface().(Sprint)
			if s.StartDate.Compare(s.EndDate) > 0 {
				sl.ReportError(s.EndDate, "endDate", "EndDate", "after_start", "")
			}
		}, Sprint{})
		validate = v
	})
	return validate
}

// Validate checks an entity against its field rules and reports the first
// failing field as a ValidationError.
func Validate(entity EntityType, id string, value any) error {
	err := entityValidator().Struct(value)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return ValidationError{Entity: entity, ID: id, Reason: err.Error()}
	}
	fe := fieldErrs[0]
	return ValidationError{Entity: entity, ID: id, Field: fieldPath(fe), Reason: reasonFor(fe)}
}

// fieldPath strips the root struct name from the namespace so nested fields
// read as comments[0].body.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "date":
		return "must be a YYYY-MM-DD date"
	case "email":
		return "must be an email address"
	case "after_start":
		return "must not precede startDate"
	default:
		return "failed " + fe.Tag()
	}
}
