// Package domain holds the marketplace rules that do not touch storage:
// rating aggregation, review moderation and the status transition tables.
package domain

const (
	MinRating = 1
	MaxRating = 5
)

// ValidRating reports whether r is an accepted star rating.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// AddRating folds one rating into a rolling average.
//
//	newAverage = (avg*count + r) / (count + 1)
func AddRating(avg float64, count, r int) (float64, int) {
	if count < 0 {
		count = 0
	}
	next := (avg*float64(count) + float64(r)) / float64(count+1)
	return clampAverage(next), count + 1
}

// RemoveRating takes a previously counted rating back out of the average.
// Removing the last rating resets the average to 0.
func RemoveRating(avg float64, count, r int) (float64, int) {
	if count <= 1 {
		return 0, 0
	}
	next := (avg*float64(count) - float64(r)) / float64(count-1)
	return clampAverage(next), count - 1
}

func clampAverage(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > MaxRating {
		return MaxRating
	}
	return v
}

// RatingKind selects which of the user's two rolling averages a rating feeds.
type RatingKind string

const (
	ProviderRatingKind RatingKind = "provider"
	ClientRatingKind   RatingKind = "client"
)
