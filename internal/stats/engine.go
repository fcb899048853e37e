// Package stats computes the dashboard's derived statistics as a pure
// function of the lead snapshot, a date range and an injected clock.
package stats

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/backendstudioapp/dashboardtypeform/internal/daterange"
	"github.com/backendstudioapp/dashboardtypeform/internal/models"
)

// Compute derives a full DashboardStats snapshot. It never fails: malformed
// fields on individual records degrade to skip/zero/default buckets so one
// bad row cannot abort the rest. now drives the "today" count, which is
// always computed over the unfiltered set, independent of the selected
// range.
func Compute(leads []models.Lead, r daterange.Range, now time.Time) models.DashboardStats {
	filtered := make([]models.Lead, 0, len(leads))
	for _, l := range leads {
		if r.Contains(l.RegisteredDate) {
			filtered = append(filtered, l)
		}
	}

	st := models.DashboardStats{TotalLeads: len(filtered)}

	todayStr := daterange.FormatLocal(now)
	for _, l := range leads {
		if l.RegisteredDate == todayStr {
			st.LeadsToday++
		}
	}

	for _, l := range filtered {
		switch l.QualifiesNorm() {
		case "si":
			st.Qualified++
		case "no":
			st.NotQualified++
		}
		if l.Status == models.StatusContacted {
			st.Contacted++
		}
		st.CashCollected += float64(l.CashCollected)
	}
	st.ContactRate = rate(st.Contacted, st.TotalLeads)

	st.ByStatus = histogramBy(filtered, func(l models.Lead) string { return l.Status })
	st.ByInterest = histogramBy(filtered, func(l models.Lead) string { return l.Interest })
	st.TopInterest = topName(st.ByInterest)
	st.HourlyActivity = hourlyHistogram(filtered)
	st.DailySeries = dailySeries(filtered, r)
	st.ByCountry = countryMatrix(filtered)
	if len(st.ByCountry) > 0 {
		st.TopCountry = st.ByCountry[0].Country
	}
	return st
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// histogramBy buckets by the literal field value (blank -> Unknown), in
// first-occurrence order for visual stability across recomputes. Serves
// both the estado and interes distributions.
func histogramBy(leads []models.Lead, key func(models.Lead) string) []models.StatusCount {
	counts := map[string]int{}
	var order []string
	for _, l := range leads {
		name := key(l)
		if strings.TrimSpace(name) == "" {
			name = models.UnknownBucket
		}
		if _, ok := counts[name]; !ok {
			order = append(order, name)
		}
		counts[name]++
	}
	out := make([]models.StatusCount, 0, len(order))
	for _, name := range order {
		out = append(out, models.StatusCount{Name: name, Value: counts[name]})
	}
	return out
}

// topName picks the most frequent bucket; on a tie the earliest-seen one
// wins, matching the histogram's own ordering.
func topName(counts []models.StatusCount) string {
	top, best := "", 0
	for _, c := range counts {
		if c.Value > best {
			top, best = c.Name, c.Value
		}
	}
	return top
}

// hourlyHistogram always emits all 24 buckets. Records with a missing or
// unparseable hora_registro are skipped silently.
func hourlyHistogram(leads []models.Lead) []models.HourlyBucket {
	out := make([]models.HourlyBucket, 24)
	for h := range out {
		out[h] = models.HourlyBucket{Hour: fmt.Sprintf("%d:00", h)}
	}
	for _, l := range leads {
		if l.RegisteredTime == "" {
			continue
		}
		hh, _, _ := strings.Cut(l.RegisteredTime, ":")
		h, err := strconv.Atoi(strings.TrimSpace(hh))
		if err != nil || h < 0 || h > 23 {
			continue
		}
		out[h].Count++
	}
	return out
}

type dayAcc struct {
	qualified    int
	notQualified int
}

// dailySeries groups by fecha_registro. With a fully bounded range it walks
// every calendar day start..end and zero-fills the gaps, keeping charts
// continuous; otherwise it emits only the dates actually present, sorted
// ascending, to avoid an unbounded zero-filled series.
func dailySeries(leads []models.Lead, r daterange.Range) []models.DailyPoint {
	byDay := map[string]*dayAcc{}
	for _, l := range leads {
		if l.RegisteredDate == "" {
			continue
		}
		acc, ok := byDay[l.RegisteredDate]
		if !ok {
			acc = &dayAcc{}
			byDay[l.RegisteredDate] = acc
		}
		switch l.QualifiesNorm() {
		case "si":
			acc.qualified++
		case "no":
			acc.notQualified++
		}
	}

	if r.Bounded() {
		days := r.Days()
		out := make([]models.DailyPoint, 0, len(days))
		for _, d := range days {
			key := daterange.FormatLocal(d)
			p := models.DailyPoint{Date: key}
			if acc, ok := byDay[key]; ok {
				p.Qualified = acc.qualified
				p.NotQualified = acc.notQualified
			}
			out = append(out, p)
		}
		return out
	}

	dates := make([]string, 0, len(byDay))
	for d := range byDay {
		dates = append(dates, d)
	}
	sort.Strings(dates) // lexical == chronological for YYYY-MM-DD
	out := make([]models.DailyPoint, 0, len(dates))
	for _, d := range dates {
		acc := byDay[d]
		out = append(out, models.DailyPoint{Date: d, Qualified: acc.qualified, NotQualified: acc.notQualified})
	}
	return out
}

type countryAcc struct {
	total        int
	qualified    int
	notQualified int
}

// countryMatrix groups by pais (blank -> Unknown), sorted by volume
// descending with first-occurrence order breaking ties.
func countryMatrix(leads []models.Lead) []models.CountryRow {
	counts := map[string]*countryAcc{}
	var order []string
	for _, l := range leads {
		name := strings.TrimSpace(l.Country)
		if name == "" {
			name = models.UnknownBucket
		}
		acc, ok := counts[name]
		if !ok {
			acc = &countryAcc{}
			counts[name] = acc
			order = append(order, name)
		}
		acc.total++
		switch l.QualifiesNorm() {
		case "si":
			acc.qualified++
		case "no":
			acc.notQualified++
		}
	}

	out := make([]models.CountryRow, 0, len(order))
	for _, name := range order {
		acc := counts[name]
		out = append(out, models.CountryRow{
			Country:      name,
			Total:        acc.total,
			Qualified:    acc.qualified,
			NotQualified: acc.notQualified,
			SuccessRate:  rate(acc.qualified, acc.total),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}
