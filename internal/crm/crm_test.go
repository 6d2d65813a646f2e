package crm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidLifecycleState(t *testing.T) {
	tests := []struct {
		name  string
		state string
		want  bool
	}{
		{name: "cold_lead", state: "cold_lead", want: true},
		{name: "warm_lead", state: "warm_lead", want: true},
		{name: "active", state: "active", want: true},
		{name: "offboarding", state: "offboarding", want: true},
		{name: "dead", state: "dead", want: true},
		{name: "archived is not a state", state: "archived", want: false},
		{name: "empty", state: "", want: false},
		{name: "case sensitive", state: "Active", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidLifecycleState(tt.state))
		})
	}
}

func TestIsRevenueState(t *testing.T) {
	assert.True(t, IsRevenueState(StateActive))
	assert.True(t, IsRevenueState(StateOffboarding))
	assert.False(t, IsRevenueState(StateColdLead))
	assert.False(t, IsRevenueState(StateWarmLead))
	assert.False(t, IsRevenueState(StateDead))
}

func TestProgramEnd(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 26, 0, 0, 0, 0, time.UTC), ProgramEnd(start, 12))
	assert.Equal(t, time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC), ProgramEnd(start, 1))
}

func TestProgramProgress(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("nil start means no program", func(t *testing.T) {
		assert.Nil(t, ProgramProgress(nil, 12, time.Now()))
	})

	t.Run("zero duration means no program", func(t *testing.T) {
		assert.Nil(t, ProgramProgress(&start, 0, time.Now()))
	})

	t.Run("halfway through a 10 week program", func(t *testing.T) {
		now := start.AddDate(0, 0, 35)
		got := ProgramProgress(&start, 10, now)
		require.NotNil(t, got)
		assert.Equal(t, 50.0, *got)
	})

	t.Run("clamps to 0 before the start", func(t *testing.T) {
		now := start.AddDate(0, 0, -10)
		got := ProgramProgress(&start, 10, now)
		require.NotNil(t, got)
		assert.Equal(t, 0.0, *got)
	})

	t.Run("clamps to 100 after the end", func(t *testing.T) {
		now := start.AddDate(0, 1, 0)
		got := ProgramProgress(&start, 2, now)
		require.NotNil(t, got)
		assert.Equal(t, 100.0, *got)
	})

	t.Run("rounds to a tenth of a percent", func(t *testing.T) {
		now := start.AddDate(0, 0, 1)
		got := ProgramProgress(&start, 12, now) // 1/84 days
		require.NotNil(t, got)
		assert.Equal(t, 1.2, *got)
	})
}

func TestProgramDaysRemaining(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("nil without a program", func(t *testing.T) {
		assert.Nil(t, ProgramDaysRemaining(nil, 12, time.Now()))
		assert.Nil(t, ProgramDaysRemaining(&start, 0, time.Now()))
	})

	t.Run("counts down to the end date", func(t *testing.T) {
		got := ProgramDaysRemaining(&start, 1, start.AddDate(0, 0, 5))
		require.NotNil(t, got)
		assert.Equal(t, 2, *got)
	})

	t.Run("negative when past the end", func(t *testing.T) {
		got := ProgramDaysRemaining(&start, 1, start.AddDate(0, 0, 10))
		require.NotNil(t, got)
		assert.Equal(t, -3, *got)
	})
}

func TestAnnualizeMRR(t *testing.T) {
	assert.Equal(t, int64(120000), AnnualizeMRR(10000))
	assert.Equal(t, int64(0), AnnualizeMRR(0))
}

func TestSumMRR(t *testing.T) {
	states := []string{StateActive, StateColdLead, StateOffboarding, StateDead}
	cents := []int64{100000, 50000, 25000, 999999}

	// Only active and offboarding clients count toward MRR
	assert.Equal(t, int64(125000), SumMRR(states, cents))
	assert.Equal(t, int64(0), SumMRR(nil, nil))
}
