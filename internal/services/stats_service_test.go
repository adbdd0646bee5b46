package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comunavision/backend/internal/models"
)

func TestDashboardTotalsAndSeries(t *testing.T) {
	db := openTestDB(t)
	admin := seedAdmin(t, db)
	seedSchema(t, db)

	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	svc := NewStatsService(db)
	svc.now = func() time.Time { return now }

	mk := func(doc, zona string, createdAt time.Time, deleted bool) {
		c := models.Comunero{
			Name:      "C " + doc,
			Document:  doc,
			Datos:     map[string]any{"zona": zona},
			CreatedBy: admin.ID,
			IsDeleted: deleted,
		}
		require.NoError(t, db.Create(&c).Error)
		// CreatedAt is set by gorm; pin it for the series buckets.
		require.NoError(t, db.Model(&c).Update("created_at", createdAt).Error)
	}

	mk("D-1", "A", now, false)
	mk("D-2", "A", now, false)
	mk("D-3", "B", now.AddDate(0, 0, -2), false)
	mk("D-4", "A", now.AddDate(0, 0, -2), true)   // deleted, excluded everywhere
	mk("D-5", "C", now.AddDate(0, 0, -30), false) // outside the 7-day window

	stats, err := svc.Dashboard("zona", 7)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalComuneros)
	assert.Equal(t, 1, stats.ActiveUsers)
	assert.Equal(t, 3, stats.ActiveFields)
	assert.Equal(t, 2, stats.NewToday)

	// Seven buckets, gaps filled with zero, today last.
	require.Len(t, stats.Series, 7)
	assert.Equal(t, "2026-03-09", stats.Series[0].Date)
	assert.Equal(t, "2026-03-15", stats.Series[6].Date)
	assert.Equal(t, 0, stats.Series[0].Count)
	assert.Equal(t, 1, stats.Series[4].Count)
	assert.Equal(t, 2, stats.Series[6].Count)

	// Top values over the whole registry, deleted rows excluded.
	require.NotEmpty(t, stats.Top)
	assert.Equal(t, "A", stats.Top[0].Value)
	assert.Equal(t, 2, stats.Top[0].Count)
}

func TestDashboardWithoutTopField(t *testing.T) {
	db := openTestDB(t)
	seedAdmin(t, db)
	svc := NewStatsService(db)

	stats, err := svc.Dashboard("", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalComuneros)
	// Out-of-range days falls back to a week.
	assert.Len(t, stats.Series, 7)
	assert.Empty(t, stats.Top)
}
