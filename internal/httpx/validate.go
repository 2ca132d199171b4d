package httpx

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their form name so clients can match them.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Struct validates v, returning a Validation AppError on failure.
func Struct(v any) error {
	if err := validate.Struct(v); err != nil {
		return FromValidator(err)
	}
	return nil
}

// SiteID checks a site id route parameter.
func SiteID(id string) error {
	if err := validate.Var(id, "required,len=10"); err != nil {
		ae := FromValidator(err)
		if len(ae.Fields) > 0 {
			ae.Fields[0].Name = "siteId"
		}
		ae.Message = "Invalid site id."
		return ae
	}
	return nil
}

// Checkbox coerces an HTML checkbox value.
func Checkbox(r *http.Request, name string) bool {
	switch strings.ToLower(r.PostFormValue(name)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
