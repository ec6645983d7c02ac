package pipeline

import (
	"math"

	"github.com/sells-group/directory-enrich/internal/model"
)

// AggregateRating returns the review-count-weighted mean of reviews rounded
// to one decimal, and the total review count. The rating is nil when the
// total count is zero.
func AggregateRating(reviews []model.ReviewSummary) (*float64, int) {
	var (
		total    int
		weighted float64
	)
	for _, r := range reviews {
		if r.ReviewCount <= 0 || math.IsNaN(r.Rating) {
			continue
		}
		total += r.ReviewCount
		weighted += r.Rating * float64(r.ReviewCount)
	}
	if total == 0 {
		return nil, 0
	}
	avg := math.Round(weighted/float64(total)*10) / 10
	return &avg, total
}
