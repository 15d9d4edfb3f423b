package analytics

import (
	"math"
	"strconv"
	"time"

	"github.com/julianstephens/daylog/internal/models"
	"github.com/julianstephens/daylog/internal/utils"
)

// Progress holds completion percentages in [0, 100].
type Progress struct {
	Monthly int `json:"monthly"`
	Yearly  int `json:"yearly"`
}

// ComputeProgress computes completion percentages for the month and year
// containing reference, with today being the real current date.
//
// The monthly figure only considers habits active in the reference month; the
// yearly figure considers every habit. In the current month or year,
// completions dated after today are not counted.
func ComputeProgress(habits []models.Habit, reference, today time.Time) Progress {
	refMonth := utils.MonthKey(reference)
	refYear := reference.Year()
	todayKey := utils.FormatISODate(today)
	isCurrentMonth := refMonth == utils.MonthKey(today)
	isCurrentYear := refYear == today.Year()

	var active int
	var monthlyDone, yearlyDone int
	for _, h := range habits {
		isActive := h.ActiveIn(refMonth)
		if isActive {
			active++
		}
		for _, d := range h.CompletedDates {
			year, month, day, ok := splitKey(d)
			if !ok || year != refYear {
				continue
			}
			if !isCurrentYear || d <= todayKey {
				yearlyDone++
			}
			if isActive && month == reference.Month() {
				if !isCurrentMonth || day <= today.Day() {
					monthlyDone++
				}
			}
		}
	}

	possibleMonthly := active * utils.DaysInMonth(reference)
	possibleYearly := len(habits) * DaysElapsedInYear(refYear, today)

	return Progress{
		Monthly: percent(monthlyDone, possibleMonthly),
		Yearly:  percent(yearlyDone, possibleYearly),
	}
}

// DaysElapsedInYear is the number of possible completion days in year: Jan 1
// through today inclusive for the current year, the full year otherwise.
func DaysElapsedInYear(year int, today time.Time) int {
	if year != today.Year() {
		return utils.DaysInYear(year)
	}
	return utils.CalendarDayDiff(today, utils.StartOfYear(today)) + 1
}

// MonthCompletions counts a habit's completions whose key falls in month.
func MonthCompletions(h models.Habit, month string) int {
	n := 0
	for _, d := range h.CompletedDates {
		if utils.InMonth(d, month) {
			n++
		}
	}
	return n
}

func percent(done, possible int) int {
	if possible <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(done) / float64(possible)))
	return min(max(p, 0), 100)
}

// splitKey reads the numeric fields of a YYYY-MM-DD key without calendar
// validation, so out-of-range days still land in their month.
func splitKey(key string) (year int, month time.Month, day int, ok bool) {
	if len(key) != 10 || key[4] != '-' || key[7] != '-' {
		return 0, 0, 0, false
	}
	y, err1 := strconv.Atoi(key[0:4])
	m, err2 := strconv.Atoi(key[5:7])
	d, err3 := strconv.Atoi(key[8:10])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, false
	}
	return y, time.Month(m), d, true
}
