package plan

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitsFor(t *testing.T) {
	tests := []struct {
		plan Plan
		want QuotaLimits
	}{
		{Free, QuotaLimits{SearchesPerDay: 5, MaxSaved: 5, MaxHistory: 3}},
		{Basic, QuotaLimits{SearchesPerDay: Unlimited, MaxSaved: 50, MaxHistory: 20}},
		{Pro, QuotaLimits{SearchesPerDay: Unlimited, MaxSaved: Unlimited, MaxHistory: 50}},
	}

	for _, tt := range tests {
		t.Run(string(tt.plan), func(t *testing.T) {
			assert.Equal(t, tt.want, LimitsFor(tt.plan))
			// pure lookup: repeated calls agree
			assert.Equal(t, LimitsFor(tt.plan), LimitsFor(tt.plan))
		})
	}
}

func TestLimitsForUnknownPlanFallsBackToFree(t *testing.T) {
	assert.Equal(t, LimitsFor(Free), LimitsFor(Plan("GOLD")))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Plan
		wantErr bool
	}{
		{in: "FREE", want: Free},
		{in: "basic", want: Basic},
		{in: " Pro ", want: Pro},
		{in: "gold", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidPlan, "Parse(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "Parse(%q)", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, Pro, Normalize("pro"))
	assert.Equal(t, Free, Normalize("garbage"))
}

func TestLimitAllowsAndRemaining(t *testing.T) {
	five := Limit(5)
	assert.True(t, five.Allows(4))
	assert.False(t, five.Allows(5))
	assert.Equal(t, 2, *five.Remaining(3))
	assert.Equal(t, 0, *five.Remaining(9))

	assert.True(t, Unlimited.Allows(1_000_000))
	assert.Nil(t, Unlimited.Remaining(10))
}

func TestLimitJSON(t *testing.T) {
	b, err := json.Marshal(LimitsFor(Basic))
	require.NoError(t, err)
	assert.JSONEq(t, `{"searchesPerDay":null,"maxSaved":50,"maxHistory":20}`, string(b))

	var got QuotaLimits
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, LimitsFor(Basic), got)
}

func TestTruncate(t *testing.T) {
	items := []int{9, 8, 7, 6, 5}

	assert.Equal(t, []int{9, 8, 7}, Truncate(items, 3))
	assert.Equal(t, items, Truncate(items, 10))
	assert.Equal(t, items, Truncate(items, Unlimited))
	assert.Empty(t, Truncate(items, 0))

	kept := Truncate(items, 2)
	kept = append(kept, 100)
	assert.Equal(t, 7, items[2], "append after truncate must not clobber the source")
	assert.Len(t, kept, 3)
}

func TestCatalogMatchesLimits(t *testing.T) {
	offers := Catalog()
	require.Len(t, offers, len(All()))
	for i, o := range offers {
		assert.Equal(t, All()[i], o.Plan)
		assert.Equal(t, LimitsFor(o.Plan), o.Limits)
		assert.NotEmpty(t, o.Features)
	}
}
