package handlers

import (
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/utils"
)

// DashboardHandler serves the dashboard statistics.
type DashboardHandler struct {
	DB *gorm.DB
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{DB: db}
}

// ServiceCount is one entry of the top-services ranking.
type ServiceCount struct {
	Service string `json:"service"`
	Count   int    `json:"count"`
}

// DailyRevenue is one point of the revenue trend, keyed by calendar day.
type DailyRevenue struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// DashboardStats aggregates the figures shown on the dashboard.
type DashboardStats struct {
	TotalAppointments      int                   `json:"totalAppointments"`
	TotalRevenue           decimal.Decimal       `json:"totalRevenue"`
	Outstanding            decimal.Decimal       `json:"outstanding"`
	UnattendedAppointments int                   `json:"unattendedAppointments"`
	AttendedPatients       int                   `json:"attendedPatients"`
	TotalPatients          int                   `json:"totalPatients"`
	PhaseBreakdown         map[string]int        `json:"phaseBreakdown"`
	TopServices            []ServiceCount        `json:"topServices"`
	RevenueTrend           []DailyRevenue        `json:"revenueTrend"`
	RecentActivity         []models.Notification `json:"recentActivity"`
}

// GetStats handles fetching dashboard statistics, filtered by time range
// (today, week, month, all) and clinic location.
func (h *DashboardHandler) GetStats(c *gin.Context) {
	var appointments []models.Appointment
	if err := h.DB.
		Preload("Patient").
		Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	var patients []models.Patient
	if err := h.DB.Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}

	filtered := filterByTimeRange(appointments, c.DefaultQuery("range", "month"), time.Now())
	filtered = filterByLocation(filtered, c.DefaultQuery("location", "All"))

	stats := buildDashboardStats(filtered, patients)

	// Last five feed entries, mirroring the dashboard's activity panel.
	if err := h.DB.Order("created_at desc").Limit(5).Find(&stats.RecentActivity).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch recent activity: "+err.Error())
		return
	}

	utils.Success(c, "Dashboard stats fetched successfully", stats)
}

// filterByTimeRange keeps appointments scheduled inside the requested
// window. Unknown ranges behave like "all".
func filterByTimeRange(appointments []models.Appointment, timeRange string, now time.Time) []models.Appointment {
	var from time.Time
	switch timeRange {
	case "today":
		from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case "week":
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		from = startOfDay.AddDate(0, 0, -int(now.Weekday()))
	case "month":
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		return appointments
	}

	var filtered []models.Appointment
	for _, a := range appointments {
		if !a.ScheduledAt.Before(from) {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

func filterByLocation(appointments []models.Appointment, location string) []models.Appointment {
	if location == "" || location == "All" {
		return appointments
	}
	var filtered []models.Appointment
	for _, a := range appointments {
		if a.Location == location {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

// buildDashboardStats computes every aggregate from the loaded rows.
// Revenue is the sum of collected installments, not of appointment totals,
// so unpaid bookings never inflate it.
func buildDashboardStats(appointments []models.Appointment, patients []models.Patient) DashboardStats {
	stats := DashboardStats{
		TotalAppointments: len(appointments),
		TotalRevenue:      decimal.Zero,
		Outstanding:       decimal.Zero,
		TotalPatients:     len(patients),
		PhaseBreakdown:    map[string]int{},
	}

	for _, p := range patients {
		if p.Attended {
			stats.AttendedPatients++
		}
	}

	serviceCounts := map[string]int{}
	dailyRevenue := map[string]decimal.Decimal{}
	for _, a := range appointments {
		l := a.Ledger()
		stats.TotalRevenue = stats.TotalRevenue.Add(l.PaidToDate())
		if remaining := l.Remaining(); remaining.IsPositive() {
			stats.Outstanding = stats.Outstanding.Add(remaining)
		}
		stats.PhaseBreakdown[string(l.Phase())]++
		if !a.Patient.Attended {
			stats.UnattendedAppointments++
		}
		serviceCounts[a.Service]++
		for _, in := range a.Installments {
			day := in.OccurredAt.Format("2006-01-02")
			dailyRevenue[day] = dailyRevenue[day].Add(in.Amount)
		}
	}

	stats.TopServices = rankServices(serviceCounts, 5)
	stats.RevenueTrend = sortTrend(dailyRevenue)
	return stats
}

func rankServices(counts map[string]int, limit int) []ServiceCount {
	ranked := make([]ServiceCount, 0, len(counts))
	for service, count := range counts {
		ranked = append(ranked, ServiceCount{Service: service, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Service < ranked[j].Service
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func sortTrend(daily map[string]decimal.Decimal) []DailyRevenue {
	trend := make([]DailyRevenue, 0, len(daily))
	for day, amount := range daily {
		trend = append(trend, DailyRevenue{Date: day, Amount: amount})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Date < trend[j].Date })
	return trend
}
