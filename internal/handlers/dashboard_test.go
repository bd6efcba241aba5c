package handlers

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dental-clinic-server/internal/models"
)

func makeAppointment(service, location string, scheduledAt time.Time, totalDue int64, attended bool, paid ...int64) models.Appointment {
	a := models.Appointment{
		Service:     service,
		Location:    location,
		ScheduledAt: scheduledAt,
		TotalDue:    decimal.NewFromInt(totalDue),
		Patient:     models.Patient{Attended: attended},
	}
	for i, amount := range paid {
		a.Installments = append(a.Installments, models.Installment{
			Amount:     decimal.NewFromInt(amount),
			OccurredAt: scheduledAt.Add(time.Duration(i) * 24 * time.Hour),
		})
	}
	return a
}

func TestFilterByTimeRange(t *testing.T) {
	now := time.Date(2025, 3, 19, 12, 0, 0, 0, time.UTC) // a Wednesday
	today := makeAppointment("Dental Checkup", "Machakos", now.Add(-2*time.Hour), 3000, true)
	thisWeek := makeAppointment("Tooth Filling", "Machakos", now.AddDate(0, 0, -2), 10000, true)
	thisMonth := makeAppointment("Root Canal", "Machakos", now.AddDate(0, 0, -10), 30000, false)
	lastYear := makeAppointment("Teeth Whitening", "Machakos", now.AddDate(-1, 0, 0), 20000, false)
	all := []models.Appointment{today, thisWeek, thisMonth, lastYear}

	assert.Len(t, filterByTimeRange(all, "today", now), 1)
	assert.Len(t, filterByTimeRange(all, "week", now), 2)
	assert.Len(t, filterByTimeRange(all, "month", now), 3)
	assert.Len(t, filterByTimeRange(all, "all", now), 4)
}

func TestFilterByLocation(t *testing.T) {
	now := time.Now()
	apps := []models.Appointment{
		makeAppointment("Dental Checkup", "Machakos", now, 3000, true),
		makeAppointment("Dental Checkup", "Tassia-Hill", now, 3000, true),
	}

	assert.Len(t, filterByLocation(apps, "All"), 2)
	assert.Len(t, filterByLocation(apps, ""), 2)

	machakos := filterByLocation(apps, "Machakos")
	require.Len(t, machakos, 1)
	assert.Equal(t, "Machakos", machakos[0].Location)
}

func TestBuildDashboardStats(t *testing.T) {
	now := time.Now()
	apps := []models.Appointment{
		makeAppointment("Tooth Filling", "Machakos", now, 10000, true, 4000, 6000),
		makeAppointment("Tooth Filling", "Machakos", now, 10000, false, 2500),
		makeAppointment("Dental Checkup", "Tassia-Hill", now, 3000, false),
		makeAppointment("Dental Checkup", "Machakos", now, 0, true),
	}
	patients := []models.Patient{
		{Attended: true},
		{Attended: false},
		{Attended: true},
	}

	stats := buildDashboardStats(apps, patients)

	assert.Equal(t, 4, stats.TotalAppointments)
	assert.True(t, stats.TotalRevenue.Equal(decimal.NewFromInt(12500)))
	assert.True(t, stats.Outstanding.Equal(decimal.NewFromInt(10500)), "unpaid checkup plus the open filling balance")
	assert.Equal(t, 2, stats.UnattendedAppointments)
	assert.Equal(t, 2, stats.AttendedPatients)
	assert.Equal(t, 3, stats.TotalPatients)

	assert.Equal(t, map[string]int{
		"Fully Paid":          1,
		"Partially Paid":      1,
		"Unpaid":              1,
		"No Payment Required": 1,
	}, stats.PhaseBreakdown)

	require.Len(t, stats.TopServices, 2)
	assert.Equal(t, ServiceCount{Service: "Dental Checkup", Count: 2}, stats.TopServices[0])
	assert.Equal(t, ServiceCount{Service: "Tooth Filling", Count: 2}, stats.TopServices[1])
}

func TestBuildDashboardStatsRevenueTrend(t *testing.T) {
	day1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	a := makeAppointment("Tooth Filling", "Machakos", day1, 10000, true, 4000, 6000)

	stats := buildDashboardStats([]models.Appointment{a}, nil)

	require.Len(t, stats.RevenueTrend, 2)
	assert.Equal(t, "2025-03-01", stats.RevenueTrend[0].Date)
	assert.True(t, stats.RevenueTrend[0].Amount.Equal(decimal.NewFromInt(4000)))
	assert.Equal(t, "2025-03-02", stats.RevenueTrend[1].Date)
	assert.True(t, stats.RevenueTrend[1].Amount.Equal(decimal.NewFromInt(6000)))
}

func TestRankServicesTiesAndLimit(t *testing.T) {
	counts := map[string]int{"A": 3, "B": 3, "C": 1, "D": 5, "E": 2, "F": 2}

	ranked := rankServices(counts, 5)

	require.Len(t, ranked, 5)
	assert.Equal(t, "D", ranked[0].Service)
	assert.Equal(t, "A", ranked[1].Service, "ties break alphabetically")
	assert.Equal(t, "B", ranked[2].Service)
}
