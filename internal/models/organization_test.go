package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrganizationNeverCarriesCredentials(t *testing.T) {
	org := Organization{
		ID:       "org-1",
		Name:     "Acme Coaching",
		Currency: "USD",
	}

	b, err := json.Marshal(org)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "admin_email")
	assert.NotContains(t, string(b), "admin_password")
}

func TestOrganizationCreatedCarriesCredentialsOnce(t *testing.T) {
	created := OrganizationCreated{
		Organization:  Organization{ID: "org-1", Name: "Acme Coaching"},
		AdminEmail:    "owner@acme.test",
		AdminPassword: "generated-secret",
	}

	b, err := json.Marshal(created)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"admin_email":"owner@acme.test"`)
	assert.Contains(t, string(b), `"admin_password":"generated-secret"`)
}

func TestCreateOrganizationRequestValidate(t *testing.T) {
	tests := []struct {
		name      string
		req       CreateOrganizationRequest
		wantField string
	}{
		{
			name: "valid",
			req:  CreateOrganizationRequest{Name: "Acme", AdminEmail: "a@b.test"},
		},
		{
			name:      "short name",
			req:       CreateOrganizationRequest{Name: "A", AdminEmail: "a@b.test"},
			wantField: "name",
		},
		{
			name:      "missing admin email",
			req:       CreateOrganizationRequest{Name: "Acme"},
			wantField: "admin_email",
		},
		{
			name:      "invalid admin email",
			req:       CreateOrganizationRequest{Name: "Acme", AdminEmail: "not-an-email"},
			wantField: "admin_email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.req.Validate()
			if tt.wantField == "" {
				assert.Empty(t, errs)
			} else {
				assert.Contains(t, errs, tt.wantField)
			}
		})
	}
}
