package model

import (
	"github.com/shopspring/decimal"
)

// Rating is one user's score for a book.
type Rating struct {
	UserID int64 `json:"user_id"`
	Rating int   `json:"rating"`
}

// Ratings is stored as a JSONB array, at most one entry per user.
type Ratings []Rating

// Apply returns the ratings with userID's score set to value. An existing
// entry keeps its position; otherwise the entry is appended. r is not modified.
func (r Ratings) Apply(userID int64, value int) Ratings {
	out := make(Ratings, len(r), len(r)+1)
	copy(out, r)

	for i := range out {
		if out[i].UserID == userID {
			out[i].Rating = value
			return out
		}
	}
	return append(out, Rating{UserID: userID, Rating: value})
}

// Mean is the arithmetic mean of all scores, or nil with no ratings.
func (r Ratings) Mean() *float64 {
	if len(r) == 0 {
		return nil
	}

	sum := decimal.Zero
	for _, item := range r {
		sum = sum.Add(decimal.NewFromInt(int64(item.Rating)))
	}

	mean, _ := sum.Div(decimal.NewFromInt(int64(len(r)))).Float64()
	return &mean
}

// OrEmpty never returns nil, so JSON always renders an array.
func (r Ratings) OrEmpty() Ratings {
	if r == nil {
		return Ratings{}
	}
	return r
}
