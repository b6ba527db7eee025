package usage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodOf_UsesUTC(t *testing.T) {
	// 2024-03-01 02:00 in UTC+05:30 is still February in UTC
	ist := time.FixedZone("IST", 5*3600+1800)
	p := PeriodOf(time.Date(2024, 3, 1, 2, 0, 0, 0, ist))

	assert.Equal(t, BillingPeriod{Year: 2024, Month: time.February}, p)
	assert.Equal(t, "2024-02", p.String())
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2023-12")
	require.NoError(t, err)
	assert.Equal(t, BillingPeriod{Year: 2023, Month: time.December}, p)

	_, err = ParsePeriod("2023-13")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestBillingPeriod_Navigation(t *testing.T) {
	jan := BillingPeriod{Year: 2024, Month: time.January}

	assert.Equal(t, BillingPeriod{Year: 2023, Month: time.December}, jan.Previous())
	assert.Equal(t, BillingPeriod{Year: 2024, Month: time.February}, jan.Next())
	assert.True(t, jan.Previous().Before(jan))
	assert.False(t, jan.Before(jan))
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), jan.End())
	assert.True(t, jan.Contains(time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, jan.Contains(jan.End()))
}

func TestEvaluateQuota(t *testing.T) {
	tests := []struct {
		name     string
		current  uint64
		limit    uint64
		exceeded bool
		remain   uint64
	}{
		{"under", 29, 30, false, 1},
		{"at limit", 30, 30, true, 0},
		{"over after race", 32, 30, true, 0},
		{"zero limit", 0, 0, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := EvaluateQuota(tt.current, tt.limit)
			assert.Equal(t, tt.exceeded, q.Exceeded)
			assert.Equal(t, tt.remain, q.Remaining)
			assert.Equal(t, tt.current, q.Current)
		})
	}
}

func TestGrowthPercent(t *testing.T) {
	assert.Equal(t, int64(50), GrowthPercent(15, 10))
	assert.Equal(t, int64(-50), GrowthPercent(5, 10))
	assert.Equal(t, int64(500), GrowthPercent(5, 0))
	assert.Equal(t, int64(0), GrowthPercent(0, 0))
	assert.Equal(t, int64(33), GrowthPercent(4, 3))
}

func TestRecord_CountOnNil(t *testing.T) {
	var r *Record
	assert.Zero(t, r.Count(KindPost))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("comment")
	require.NoError(t, err)
	assert.Equal(t, KindComment, k)

	_, err = ParseKind("article")
	assert.ErrorIs(t, err, ErrInvalidKind)
}
