package api

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/warp/pto-tracker/generic"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report JSON names, not Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// date: YYYY-MM-DD or RFC 3339
	v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := generic.ParseTime(fl.Field().String())
		return err == nil
	})
	return v
}

func writeValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	details := make([]FieldDetail, 0, len(verrs))
	fields := make([]string, 0, len(verrs))
	for _, e := range verrs {
		details = append(details, FieldDetail{Field: e.Field(), Message: validationMessage(e)})
		fields = append(fields, e.Field())
	}

	title := "Validation failed"
	for _, e := range verrs {
		if e.Tag() == "required" {
			title = "Missing required fields"
			break
		}
	}
	writeJSON(w, http.StatusBadRequest, Envelope{
		Error:   title,
		Message: "Invalid fields: " + strings.Join(fields, ", "),
		Details: details,
	})
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "date":
		return "Must be a date (YYYY-MM-DD or RFC 3339)"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "lte":
		return "Must be less than or equal to " + e.Param()
	default:
		return "Invalid value"
	}
}
