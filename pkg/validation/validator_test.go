package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusRequest struct {
	Status string `json:"status" validate:"required,vendor_status"`
}

type domainsRequest struct {
	Domains []string `json:"domains" validate:"required,min=1,dive,domain"`
}

func TestValidateStruct_VendorStatus(t *testing.T) {
	tests := []struct {
		status  string
		wantErr bool
	}{
		{"active", false},
		{"warning", false},
		{"suspended", false},
		{"blacklisted", false},
		{"probation", true},
		{"paused", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			err := ValidateStruct(statusRequest{Status: tt.status})
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var valErr *ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Contains(t, valErr.Errors, "Status")
		})
	}
}

func TestVendorStatusMessageListsStatuses(t *testing.T) {
	err := ValidateStruct(statusRequest{Status: "terminated"})
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "Status must be one of: active, warning, suspended, blacklisted", valErr.Errors["Status"])
}

func TestValidateStruct_Domains(t *testing.T) {
	assert.NoError(t, ValidateStruct(domainsRequest{Domains: []string{"mailinator.com", "trash-mail.co.uk"}}))

	err := ValidateStruct(domainsRequest{Domains: []string{"not a domain"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bare domain")

	assert.Error(t, ValidateStruct(domainsRequest{}))
}

func TestIsDomain(t *testing.T) {
	assert.True(t, IsDomain("tempmail.com"))
	assert.True(t, IsDomain(" yopmail.com "))
	assert.False(t, IsDomain("localhost"))
	assert.False(t, IsDomain("user@tempmail.com"))
	assert.False(t, IsDomain("-bad.com"))
}

func TestValidationErrorMessageIsSorted(t *testing.T) {
	err := &ValidationError{Errors: map[string]string{"b": "second", "a": "first"}}
	assert.Equal(t, "a: first; b: second", err.Error())
}
