package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/comunavision/backend/internal/models"
)

// SeriesPoint is one day of the comunero creation series.
type SeriesPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// TopValue is one bucket of the top-values breakdown of a dynamic field.
type TopValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// DashboardStats aggregates the numbers shown on the home dashboard.
type DashboardStats struct {
	TotalComuneros int           `json:"total_comuneros"`
	ActiveUsers    int           `json:"usuarios_activos"`
	ActiveFields   int           `json:"campos_activos"`
	NewToday       int           `json:"nuevos_hoy"`
	Series         []SeriesPoint `json:"serie"`
	TopField       string        `json:"campo_top"`
	Top            []TopValue    `json:"top5"`
}

// StatsService computes dashboard aggregates. Reads only.
type StatsService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStatsService returns a StatsService reading from db.
func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db, now: time.Now}
}

// Dashboard computes totals, the last-N-days series with gaps filled, and
// the top five values of the given dynamic field. topField must name an
// existing field definition; callers resolve that before passing it in, so
// the json path below is never raw user input.
func (s *StatsService) Dashboard(topField string, days int) (*DashboardStats, error) {
	if days <= 0 || days > 90 {
		days = 7
	}

	stats := &DashboardStats{TopField: topField}

	var n int64
	if err := s.db.Model(&models.Comunero{}).Where("is_deleted = ?", false).Count(&n).Error; err != nil {
		return nil, err
	}
	stats.TotalComuneros = int(n)

	if err := s.db.Model(&models.User{}).Where("activo = ?", true).Count(&n).Error; err != nil {
		return nil, err
	}
	stats.ActiveUsers = int(n)

	if err := s.db.Model(&models.FieldDefinition{}).Where("activo = ?", true).Count(&n).Error; err != nil {
		return nil, err
	}
	stats.ActiveFields = int(n)

	today := s.now().UTC().Truncate(24 * time.Hour)
	if err := s.db.Model(&models.Comunero{}).
		Where("is_deleted = ? AND date(created_at) = ?", false, today.Format("2006-01-02")).
		Count(&n).Error; err != nil {
		return nil, err
	}
	stats.NewToday = int(n)

	start := today.AddDate(0, 0, -(days - 1))

	type dayRow struct {
		Dia   string
		Total int
	}
	var rows []dayRow
	if err := s.db.Model(&models.Comunero{}).
		Select("date(created_at) AS dia, count(*) AS total").
		Where("is_deleted = ? AND date(created_at) >= ?", false, start.Format("2006-01-02")).
		Group("dia").Order("dia").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	byDay := make(map[string]int, len(rows))
	for _, r := range rows {
		byDay[r.Dia] = r.Total
	}
	stats.Series = make([]SeriesPoint, 0, days)
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i).Format("2006-01-02")
		stats.Series = append(stats.Series, SeriesPoint{Date: d, Count: byDay[d]})
	}

	if topField != "" {
		type topRow struct {
			Valor string
			Total int
		}
		var top []topRow
		if err := s.db.Model(&models.Comunero{}).
			Select("cast(json_extract(datos_dinamicos, ?) as text) AS valor, count(*) AS total", "$."+topField).
			Where("is_deleted = ? AND json_extract(datos_dinamicos, ?) IS NOT NULL", false, "$."+topField).
			Group("valor").Order("total desc").Limit(5).
			Scan(&top).Error; err != nil {
			return nil, err
		}
		stats.Top = make([]TopValue, 0, len(top))
		for _, r := range top {
			v := r.Valor
			if v == "" {
				v = "SIN_VALOR"
			}
			stats.Top = append(stats.Top, TopValue{Value: v, Count: r.Total})
		}
	}

	return stats, nil
}
