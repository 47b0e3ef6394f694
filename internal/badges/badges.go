// Package badges derives achievement badges from a user's attempt history.
package badges

import (
	"sort"
	"time"

	"github.com/ninesib/backend/internal/models"
)

// Defs lists every badge this app can award, keyed by code.
var Defs = map[string]models.Badge{
	"first-blood": {Code: "first-blood", Name: "First Mission", Desc: "Complete your first exam set"},
	"eagle":       {Code: "eagle", Name: "Eagle Eye", Desc: "Score 80% accuracy or better"},
	"sniper":      {Code: "sniper", Name: "Sniper", Desc: "Score 95% accuracy or better"},
	"streak3":     {Code: "streak3", Name: "Disciplined", Desc: "Practice 3 days in a row"},
	"streak7":     {Code: "streak7", Name: "Relentless", Desc: "Practice 7 days in a row"},
}

// order fixes the badge ordering in responses.
var order = []string{"first-blood", "eagle", "sniper", "streak3", "streak7"}

// Compute derives the badge set from the full attempt history. Pure and
// deterministic: the same history always yields the same badges. An empty
// history yields no badges at all.
func Compute(attempts []models.AttemptRecord) []models.Badge {
	earned := map[string]bool{}

	if len(attempts) >= 1 {
		earned["first-blood"] = true
	}

	bestAcc := 0.0
	for _, a := range attempts {
		if a.Result.Summary.Accuracy > bestAcc {
			bestAcc = a.Result.Summary.Accuracy
		}
	}
	if bestAcc >= 80 {
		earned["eagle"] = true
	}
	if bestAcc >= 95 {
		earned["sniper"] = true
	}

	streak := DailyStreak(attempts)
	if streak >= 3 {
		earned["streak3"] = true
	}
	if streak >= 7 {
		earned["streak7"] = true
	}

	res := []models.Badge{}
	for _, code := range order {
		if earned[code] {
			res = append(res, Defs[code])
		}
	}
	return res
}

// DailyStreak returns the longest run of consecutive local calendar days
// with at least one attempt. Multiple attempts on one day count once; a gap
// of more than one day resets the run. Zero for an empty history.
func DailyStreak(attempts []models.AttemptRecord) int {
	daySet := map[string]time.Time{}
	for _, a := range attempts {
		day := time.UnixMilli(a.CreatedAt).Local()
		day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		daySet[day.Format("2006-01-02")] = day
	}
	if len(daySet) == 0 {
		return 0
	}

	days := make([]time.Time, 0, len(daySet))
	for _, d := range daySet {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	streak, maxStreak := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i-1].AddDate(0, 0, 1).Equal(days[i]) {
			streak++
			if streak > maxStreak {
				maxStreak = streak
			}
		} else {
			streak = 1
		}
	}
	return maxStreak
}
