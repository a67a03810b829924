// Package ranking computes the time-decayed trending score of subjects.
package ranking

import (
	"math"
	"sort"
	"time"

	"ditto/internal/model"
)

// Gravity controls how fast age pulls a subject down the trending list.
const Gravity = 1.2

// Score = (points-1) / (ageSeconds+2)^Gravity
//
// The -1 discounts the author's own star added at submission. A subject whose
// author retracted that star scores below zero, which keeps it under every
// subject with real engagement.
func Score(points int, ageSeconds float64) float64 {
	if ageSeconds < 0 || math.IsNaN(ageSeconds) {
		ageSeconds = 0
	}
	return float64(points-1) / math.Pow(ageSeconds+2, Gravity)
}

// Age returns the seconds elapsed between created and now, never negative.
func Age(created, now time.Time) float64 {
	d := now.Sub(created).Seconds()
	if d < 0 {
		return 0
	}
	return d
}

// Rank sets RankScore on every subject as of now and sorts them by score,
// highest first. Ties keep their incoming order.
func Rank(subjects []model.Subject, now time.Time) []model.Subject {
	for i := range subjects {
		subjects[i].RankScore = Score(subjects[i].Points, Age(subjects[i].CreatedAt, now))
	}
	sort.SliceStable(subjects, func(i, j int) bool {
		return subjects[i].RankScore > subjects[j].RankScore
	})
	return subjects
}
