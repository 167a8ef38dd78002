package validation

import (
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	domainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?(\.[a-z0-9]([a-z0-9-]*[a-z0-9])?)+$`)
)

// VendorStatuses lists the statuses a vendor can be moved to
var VendorStatuses = []string{"active", "warning", "suspended", "blacklisted"}

// Get returns the shared validator with the custom rules registered
func Get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("vendor_status", validateVendorStatus)
		_ = validate.RegisterValidation("domain", validateDomain)
	})
	return validate
}

// ValidateStruct validates s and converts field failures into a ValidationError
func ValidateStruct(s interface{}) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return NewValidationError(fieldErrs)
	}
	return err
}

func validateVendorStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, s := range VendorStatuses {
		if value == s {
			return true
		}
	}
	return false
}

func validateDomain(fl validator.FieldLevel) bool {
	return IsDomain(fl.Field().String())
}

// IsDomain reports whether s looks like a lowercase DNS domain
func IsDomain(s string) bool {
	return domainPattern.MatchString(strings.TrimSpace(s))
}
