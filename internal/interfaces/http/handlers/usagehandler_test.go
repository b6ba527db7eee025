package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postforge/postforge/internal/application/usage"
	usagedomain "github.com/postforge/postforge/internal/domain/usage"
	"github.com/postforge/postforge/internal/interfaces/http/handlers/testutil"
	"github.com/postforge/postforge/internal/shared/errors"
)

type mockUsageReporter struct {
	overview      *usage.Overview
	stats         *usage.PlanStats
	history       []usage.HistoryEntry
	err           error
	gotMaxPeriods int
	gotUserID     uint
}

func (m *mockUsageReporter) Overview(ctx context.Context, userID uint) (*usage.Overview, error) {
	m.gotUserID = userID
	return m.overview, m.err
}

func (m *mockUsageReporter) Stats(ctx context.Context, userID uint) (*usage.PlanStats, error) {
	m.gotUserID = userID
	return m.stats, m.err
}

func (m *mockUsageReporter) History(ctx context.Context, userID uint, maxPeriods int) ([]usage.HistoryEntry, error) {
	m.gotUserID = userID
	m.gotMaxPeriods = maxPeriods
	return m.history, m.err
}

func TestUsageHandler_GetUsage(t *testing.T) {
	reporter := &mockUsageReporter{overview: &usage.Overview{
		Plan:   "starter",
		Period: "2024-03",
		Posts:  usagedomain.EvaluateQuota(9, 10),
	}}
	h := NewUsageHandler(reporter, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/usage", nil)
	testutil.SetAuthContext(c, 42)
	h.GetUsage(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(42), reporter.gotUserID)

	var got usage.Overview
	require.NoError(t, testutil.ParseData(w, &got))
	assert.Equal(t, "starter", got.Plan)
	assert.Equal(t, uint64(1), got.Posts.Remaining)
}

func TestUsageHandler_Unauthenticated(t *testing.T) {
	h := NewUsageHandler(&mockUsageReporter{}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/usage", nil)
	h.GetUsage(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUsageHandler_GetUsageUnavailable(t *testing.T) {
	h := NewUsageHandler(&mockUsageReporter{err: errors.NewUnavailableError("entitlement unavailable")}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/usage", nil)
	testutil.SetAuthContext(c, 1)
	h.GetUsage(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestUsageHandler_GetHistory(t *testing.T) {
	tests := []struct {
		name        string
		query       map[string]string
		wantStatus  int
		wantPeriods int
	}{
		{"default", nil, http.StatusOK, 0},
		{"explicit", map[string]string{"periods": "3"}, http.StatusOK, 3},
		{"not a number", map[string]string{"periods": "abc"}, http.StatusBadRequest, 0},
		{"zero", map[string]string{"periods": "0"}, http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reporter := &mockUsageReporter{history: []usage.HistoryEntry{{Period: "2024-03", PostsGenerated: 2}}}
			h := NewUsageHandler(reporter, testutil.NewMockLogger())

			c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/usage/history", nil)
			testutil.SetAuthContext(c, 5)
			if tt.query != nil {
				testutil.SetQueryParams(c, tt.query)
			}
			h.GetHistory(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantPeriods, reporter.gotMaxPeriods)
				var list struct {
					Items []usage.HistoryEntry `json:"items"`
					Total int                  `json:"total"`
				}
				require.NoError(t, testutil.ParseData(w, &list))
				assert.Equal(t, 1, list.Total)
			}
		})
	}
}

func TestUsageHandler_GetStats(t *testing.T) {
	reporter := &mockUsageReporter{stats: &usage.PlanStats{
		Plan:  "pro",
		Stats: &usage.Stats{Period: "2024-03", Posts: usage.KindStats{Used: 3, GrowthPercent: 50}},
	}}
	h := NewUsageHandler(reporter, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/usage/stats", nil)
	testutil.SetAuthContext(c, 9)
	h.GetStats(c)

	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]interface{}
	require.NoError(t, testutil.ParseData(w, &got))
	assert.Equal(t, "pro", got["plan"])
	assert.Equal(t, "2024-03", got["period"])
}
