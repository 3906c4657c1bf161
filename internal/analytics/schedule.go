// ClassPulse - Studio Booking Analytics Engine
// Copyright 2026 ClassPulse Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classpulse/classpulse

package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/classpulse/classpulse/internal/models"
)

// Demand/supply thresholds for the rebalancing heuristic.
const (
	// addClassFactor triggers an ADD_CLASS opportunity when demand exceeds
	// this multiple of slot supply.
	addClassFactor = 1.2

	// removeClassFactor triggers a REMOVE_CLASS opportunity when demand
	// falls below this multiple of slot supply.
	removeClassFactor = 0.5

	// defaultAddedCapacity sizes proposed classes when the current
	// schedule offers no capacity to average over.
	defaultAddedCapacity = 20
)

// OptimizeSchedule detects demand/supply gaps per weekly time slot and
// produces a greedy, single-pass set of rebalancing opportunities, an
// optimized schedule honoring the caller's constraints, and utilization
// before and after.
func OptimizeSchedule(req ScheduleRequest) (*models.ScheduleOptimization, error) {
	demand := demandBySlot(req.HistoricalBookings, req.CurrentSchedule)

	supply := make(map[models.TimeSlot]int)
	occupants := make(map[models.TimeSlot][]models.ScheduledClass)
	for i := range req.CurrentSchedule {
		c := req.CurrentSchedule[i]
		slot := models.SlotFor(c.StartTime)
		supply[slot] += c.Capacity
		occupants[slot] = append(occupants[slot], c)
	}

	opportunities := findOpportunities(demand, supply, occupants)
	optimized := applyOpportunities(req.CurrentSchedule, opportunities, req.Constraints, referenceWeek(req))

	totalBookings := 0
	for i := range req.HistoricalBookings {
		if req.HistoricalBookings[i].Valid() {
			totalBookings++
		}
	}

	result := &models.ScheduleOptimization{
		CurrentUtilization:   utilization(totalBookings, req.CurrentSchedule),
		OptimizedUtilization: utilization(totalBookings, optimized),
		Opportunities:        opportunities,
		OptimizedSchedule:    optimized,
		Recommendations:      scheduleRecommendations(opportunities),
	}
	return result, nil
}

// demandBySlot counts historical bookings per weekly slot. Bookings that
// reference a class on the current schedule use the class start slot;
// otherwise the booking creation time is the best available proxy.
func demandBySlot(bookings []models.BookingRecord, schedule []models.ScheduledClass) map[models.TimeSlot]float64 {
	slotByClass := make(map[string]models.TimeSlot, len(schedule))
	for i := range schedule {
		slotByClass[schedule[i].ID] = models.SlotFor(schedule[i].StartTime)
	}

	demand := make(map[models.TimeSlot]float64)
	for i := range bookings {
		b := &bookings[i]
		if !b.Valid() {
			continue
		}
		if slot, ok := slotByClass[b.ClassID]; ok {
			demand[slot]++
		} else {
			demand[models.SlotFor(b.CreatedAt)]++
		}
	}
	return demand
}

// findOpportunities walks every weekly slot once, emitting ADD_CLASS for
// shortfalls and REMOVE_CLASS for under-used slots.
func findOpportunities(demand map[models.TimeSlot]float64, supply map[models.TimeSlot]int, occupants map[models.TimeSlot][]models.ScheduledClass) []models.ScheduleOpportunity {
	var opportunities []models.ScheduleOpportunity

	for day := time.Sunday; day <= time.Saturday; day++ {
		for hour := 0; hour < 24; hour++ {
			slot := models.TimeSlot{Weekday: day, Hour: hour}
			slotDemand := demand[slot]
			slotSupply := float64(supply[slot])

			switch {
			case slotDemand > slotSupply*addClassFactor && slotDemand > 0:
				opportunities = append(opportunities, models.ScheduleOpportunity{
					Type:           models.OpportunityAddClass,
					TimeSlot:       slot,
					Reason:         "High demand",
					ExpectedImpact: math.Round(slotDemand - slotSupply),
					Priority:       models.PriorityHigh,
				})
			case slotDemand < slotSupply*removeClassFactor && len(occupants[slot]) > 0:
				removed := pickRemovalCandidate(occupants[slot])
				opportunities = append(opportunities, models.ScheduleOpportunity{
					Type:           models.OpportunityRemoveClass,
					TimeSlot:       slot,
					Reason:         "Low demand",
					ExpectedImpact: math.Max(0, slotSupply-slotDemand),
					Priority:       models.PriorityMedium,
					Class:          &removed,
				})
			}
		}
	}
	return opportunities
}

// pickRemovalCandidate chooses the smallest class in the slot so the
// removal sheds the least capacity; ties break on ID for determinism.
func pickRemovalCandidate(classes []models.ScheduledClass) models.ScheduledClass {
	best := classes[0]
	for _, c := range classes[1:] {
		if c.Capacity < best.Capacity || (c.Capacity == best.Capacity && c.ID < best.ID) {
			best = c
		}
	}
	return best
}

// applyOpportunities produces the optimized schedule, honoring the
// caller-supplied constraints. Greedy: opportunities are applied in order
// and never revisited.
func applyOpportunities(current []models.ScheduledClass, opportunities []models.ScheduleOpportunity, constraints models.ScheduleConstraints, week time.Time) []models.ScheduledClass {
	optimized := make([]models.ScheduledClass, len(current))
	copy(optimized, current)

	perDay := make(map[time.Weekday]int)
	for i := range optimized {
		perDay[optimized[i].StartTime.Weekday()]++
	}

	addedCapacity := avgCapacity(current)

	for _, opp := range opportunities {
		switch opp.Type {
		case models.OpportunityRemoveClass:
			if opp.Class == nil {
				continue
			}
			for i := range optimized {
				if optimized[i].ID == opp.Class.ID {
					perDay[optimized[i].StartTime.Weekday()]--
					optimized = append(optimized[:i], optimized[i+1:]...)
					break
				}
			}

		case models.OpportunityAddClass:
			if constraints.MaxClassesPerDay > 0 && perDay[opp.TimeSlot.Weekday] >= constraints.MaxClassesPerDay {
				continue
			}
			if constraints.CloseHour > constraints.OpenHour &&
				(opp.TimeSlot.Hour < constraints.OpenHour || opp.TimeSlot.Hour >= constraints.CloseHour) {
				continue
			}
			optimized = append(optimized, models.ScheduledClass{
				ID:        fmt.Sprintf("proposed-%s", opp.TimeSlot.Key()),
				Name:      "Proposed class",
				StartTime: slotTime(week, opp.TimeSlot),
				Capacity:  addedCapacity,
			})
			perDay[opp.TimeSlot.Weekday]++
		}
	}

	sort.SliceStable(optimized, func(i, j int) bool {
		return optimized[i].StartTime.Before(optimized[j].StartTime)
	})
	return optimized
}

// referenceWeek anchors proposed class times to the week of the most
// recent scheduled class, falling back to the most recent booking. The
// optimizer never consults the wall clock.
func referenceWeek(req ScheduleRequest) time.Time {
	var latest time.Time
	for i := range req.CurrentSchedule {
		if req.CurrentSchedule[i].StartTime.After(latest) {
			latest = req.CurrentSchedule[i].StartTime
		}
	}
	if latest.IsZero() {
		for i := range req.HistoricalBookings {
			if req.HistoricalBookings[i].CreatedAt.After(latest) {
				latest = req.HistoricalBookings[i].CreatedAt
			}
		}
	}
	if latest.IsZero() {
		return time.Time{}
	}
	// Start of that week, Sunday-based to match time.Weekday.
	day := time.Date(latest.Year(), latest.Month(), latest.Day(), 0, 0, 0, 0, latest.Location())
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// slotTime places a weekly slot onto a concrete week.
func slotTime(week time.Time, slot models.TimeSlot) time.Time {
	if week.IsZero() {
		return time.Time{}
	}
	return week.AddDate(0, 0, int(slot.Weekday)).Add(time.Duration(slot.Hour) * time.Hour)
}

func avgCapacity(classes []models.ScheduledClass) int {
	if len(classes) == 0 {
		return defaultAddedCapacity
	}
	total := 0
	for i := range classes {
		total += classes[i].Capacity
	}
	avg := total / len(classes)
	if avg <= 0 {
		return defaultAddedCapacity
	}
	return avg
}

// utilization is total bookings over total offered capacity.
func utilization(totalBookings int, schedule []models.ScheduledClass) float64 {
	capacity := 0
	for i := range schedule {
		capacity += schedule[i].Capacity
	}
	if capacity <= 0 {
		return 0
	}
	return float64(totalBookings) / float64(capacity)
}

func scheduleRecommendations(opportunities []models.ScheduleOpportunity) []string {
	adds, removes := 0, 0
	for _, opp := range opportunities {
		switch opp.Type {
		case models.OpportunityAddClass:
			adds++
		case models.OpportunityRemoveClass:
			removes++
		}
	}

	var recs []string
	if adds > 0 {
		recs = append(recs, fmt.Sprintf("Add classes in %d high-demand time slots to capture unmet demand", adds))
	}
	if removes > 0 {
		recs = append(recs, fmt.Sprintf("Consolidate %d under-filled time slots to cut instructor and room costs", removes))
	}
	if len(recs) == 0 {
		recs = append(recs, "Current schedule is well balanced against historical demand")
	}
	return recs
}
