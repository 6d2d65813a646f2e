package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func int64Ptr(n int64) *int64 { return &n }

func TestCreateClientRequestValidate(t *testing.T) {
	tests := []struct {
		name      string
		req       CreateClientRequest
		wantField string
	}{
		{
			name: "valid minimal request",
			req:  CreateClientRequest{Name: "Jane Doe"},
		},
		{
			name:      "name too short",
			req:       CreateClientRequest{Name: "J"},
			wantField: "name",
		},
		{
			name: "valid lifecycle state",
			req:  CreateClientRequest{Name: "Jane Doe", LifecycleState: "active"},
		},
		{
			name:      "archived is not a lifecycle state",
			req:       CreateClientRequest{Name: "Jane Doe", LifecycleState: "archived"},
			wantField: "lifecycle_state",
		},
		{
			name:      "negative MRR rejected",
			req:       CreateClientRequest{Name: "Jane Doe", EstimatedMRRCents: int64Ptr(-100)},
			wantField: "estimated_mrr_cents",
		},
		{
			name: "zero MRR accepted",
			req:  CreateClientRequest{Name: "Jane Doe", EstimatedMRRCents: int64Ptr(0)},
		},
		{
			name: "program window with duration",
			req: CreateClientRequest{
				Name:                 "Jane Doe",
				ProgramStartDate:     strPtr("2026-01-01"),
				ProgramDurationWeeks: intPtr(12),
			},
		},
		{
			name: "program start without duration rejected",
			req: CreateClientRequest{
				Name:             "Jane Doe",
				ProgramStartDate: strPtr("2026-01-01"),
			},
			wantField: "program_duration_weeks",
		},
		{
			name: "malformed start date rejected",
			req: CreateClientRequest{
				Name:                 "Jane Doe",
				ProgramStartDate:     strPtr("01/01/2026"),
				ProgramDurationWeeks: intPtr(12),
			},
			wantField: "program_start_date",
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

func TestUpdateClientRequestValidate(t *testing.T) {
	t.Run("empty update is valid", func(t *testing.T) {
		req := UpdateClientRequest{}
		assert.Empty(t, req.Validate())
	})

	t.Run("invalid lifecycle state rejected", func(t *testing.T) {
		req := UpdateClientRequest{LifecycleState: strPtr("archived")}
		assert.Contains(t, req.Validate(), "lifecycle_state")
	})

	t.Run("zero duration rejected", func(t *testing.T) {
		req := UpdateClientRequest{ProgramDurationWeeks: intPtr(0)}
		assert.Contains(t, req.Validate(), "program_duration_weeks")
	})
}

func TestClientDeriveMRR(t *testing.T) {
	c := Client{EstimatedMRRCents: 250000, Currency: "USD"}
	c.DeriveMRR()
	assert.Equal(t, "2500", c.EstimatedMRR.String())
}
