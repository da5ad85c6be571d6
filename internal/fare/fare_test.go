package fare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// standardTable mirrors the academy's published tariff schedule.
func standardTable(t *testing.T) Table {
	t.Helper()
	table, err := NewTable([]Tier{
		CourseCountTier{Courses: 1, Fare: 20000},
		CourseCountTier{Courses: 2, Fare: 25000},
		CourseCountTier{Courses: 3, Fare: 30000},
		CourseCountTier{Courses: 4, Fare: 32000},
		FlatTier{Fare: 35000},
		LateFeeTier{PerDay: 800},
	})
	require.NoError(t, err)
	return table
}

func TestNewTable(t *testing.T) {
	tests := []struct {
		name    string
		tiers   []Tier
		wantErr error
	}{
		{
			name:  "empty table is valid",
			tiers: nil,
		},
		{
			name: "negative course fare rejected",
			tiers: []Tier{
				CourseCountTier{Courses: 1, Fare: -100},
			},
			wantErr: ErrNegativeFare,
		},
		{
			name: "course count zero rejected",
			tiers: []Tier{
				CourseCountTier{Courses: 0, Fare: 1000},
			},
			wantErr: ErrInvalidTierCount,
		},
		{
			name: "course count at flat threshold rejected",
			tiers: []Tier{
				CourseCountTier{Courses: 5, Fare: 1000},
			},
			wantErr: ErrInvalidTierCount,
		},
		{
			name: "duplicate course tier rejected",
			tiers: []Tier{
				CourseCountTier{Courses: 2, Fare: 1000},
				CourseCountTier{Courses: 2, Fare: 2000},
			},
			wantErr: ErrDuplicateTier,
		},
		{
			name: "duplicate flat tier rejected",
			tiers: []Tier{
				FlatTier{Fare: 1000},
				FlatTier{Fare: 2000},
			},
			wantErr: ErrDuplicateTier,
		},
		{
			name: "negative late fee rejected",
			tiers: []Tier{
				LateFeeTier{PerDay: -1},
			},
			wantErr: ErrNegativeFare,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.tiers)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolveMonthlyFare(t *testing.T) {
	table := standardTable(t)

	tests := []struct {
		name    string
		count   int
		want    int64
		wantErr error
	}{
		{name: "zero courses is a lookup miss", count: 0, want: 0},
		{name: "one course", count: 1, want: 20000},
		{name: "two courses", count: 2, want: 25000},
		{name: "three courses", count: 3, want: 30000},
		{name: "four courses", count: 4, want: 32000},
		{name: "five courses hits flat rate", count: 5, want: 35000},
		{name: "well past threshold still flat", count: 9, want: 35000},
		{name: "negative count rejected", count: -1, wantErr: ErrNegativeCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveMonthlyFare(tt.count, table)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveMonthlyFare_MissingTiers(t *testing.T) {
	empty, err := NewTable(nil)
	require.NoError(t, err)

	got, err := ResolveMonthlyFare(3, empty)
	require.NoError(t, err)
	assert.Zero(t, got, "missing course tier resolves to 0")

	got, err = ResolveMonthlyFare(7, empty)
	require.NoError(t, err)
	assert.Zero(t, got, "missing flat tier resolves to 0")
}

func TestResolveMonthlyFare_MonotonicTariffs(t *testing.T) {
	// Data quality check against the published schedule: fares must not
	// decrease as the course count grows.
	table := standardTable(t)

	prev := int64(0)
	for n := 0; n <= 4; n++ {
		fare, err := ResolveMonthlyFare(n, table)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, fare, prev, "fare for %d courses dropped below fare for %d", n, n-1)
		prev = fare
	}
	flat, err := ResolveMonthlyFare(5, table)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, flat, prev)
}

func TestComputeIncrementalFare(t *testing.T) {
	table := standardTable(t)

	tests := []struct {
		name        string
		prior       int
		selected    int
		want        int64
		wantClamped bool
		wantErr     error
	}{
		{name: "nothing selected owes nothing", prior: 0, selected: 0, want: 0},
		{name: "nothing selected with prior courses owes nothing", prior: 3, selected: 0, want: 0},
		{name: "first enrollment of three courses", prior: 0, selected: 3, want: 30000},
		{name: "adding one course to two", prior: 2, selected: 1, want: 5000},
		{name: "adding two courses to four crosses flat threshold", prior: 4, selected: 2, want: 3000},
		{name: "already at flat rate adds another course", prior: 5, selected: 1, want: 0},
		{name: "negative prior rejected", prior: -1, selected: 1, wantErr: ErrNegativeCount},
		{name: "negative selected rejected", prior: 1, selected: -2, wantErr: ErrNegativeCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, clamped, err := ComputeIncrementalFare(tt.prior, tt.selected, table)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantClamped, clamped)
			assert.GreaterOrEqual(t, got, int64(0), "incremental fare must never be negative")
		})
	}
}

func TestComputeIncrementalFare_ClampsInconsistentTable(t *testing.T) {
	// A flat rate below the tier-4 fee is a misconfigured table; the
	// difference would be negative and must surface as a clamped 0.
	table, err := NewTable([]Tier{
		CourseCountTier{Courses: 4, Fare: 32000},
		FlatTier{Fare: 30000},
	})
	require.NoError(t, err)

	got, clamped, err := ComputeIncrementalFare(4, 1, table)
	require.NoError(t, err)
	assert.Zero(t, got)
	assert.True(t, clamped, "negative difference must be reported for reconciliation")
}

func TestComputeIncrementalFare_MissingFlatTier(t *testing.T) {
	table, err := NewTable([]Tier{
		CourseCountTier{Courses: 4, Fare: 32000},
	})
	require.NoError(t, err)

	// Crossing the threshold without a flat tier: target resolves to 0,
	// prior commitment is 32000, so the difference clamps.
	got, clamped, err := ComputeIncrementalFare(4, 1, table)
	require.NoError(t, err)
	assert.Zero(t, got)
	assert.True(t, clamped)
}

func TestComputeInitialFare(t *testing.T) {
	scheme := InitialScheme{BaseFare: 22000, PerExtraCourse: 6000}

	tests := []struct {
		name     string
		selected int
		scheme   InitialScheme
		want     int64
		wantErr  error
	}{
		{name: "nothing selected", selected: 0, scheme: scheme, want: 0},
		{name: "single course pays base only", selected: 1, scheme: scheme, want: 22000},
		{name: "three courses pay base plus two increments", selected: 3, scheme: scheme, want: 34000},
		{name: "negative selection rejected", selected: -1, scheme: scheme, wantErr: ErrNegativeCount},
		{
			name:     "negative scheme rejected",
			selected: 1,
			scheme:   InitialScheme{BaseFare: -1},
			wantErr:  ErrInvalidScheme,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeInitialFare(tt.selected, tt.scheme)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, int64(0))
		})
	}
}
