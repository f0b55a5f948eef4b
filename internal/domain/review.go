package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a rating with an optional comment attached to one business.
type Review struct {
	ID          string     `json:"_id,omitempty"`
	Rating      int        `json:"rating"`
	Comment     string     `json:"comment"`
	Author      string     `json:"author,omitempty"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
}

// AggregateRating is derived from a review set and never persisted.
// Average is nil when Count is zero.
type AggregateRating struct {
	Average *float64 `json:"average"`
	Count   int      `json:"count"`
}

// Aggregate computes the mean rating rounded to one decimal.
func Aggregate(reviews []Review) AggregateRating {
	if len(reviews) == 0 {
		return AggregateRating{}
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := math.Round(float64(sum)/float64(len(reviews))*10) / 10
	return AggregateRating{Average: &avg, Count: len(reviews)}
}

// HasAverage reports whether there is an average to display.
func (a AggregateRating) HasAverage() bool {
	return a.Average != nil && a.Count > 0
}

// AverageText formats the average with one decimal, or "" when undefined.
func (a AggregateRating) AverageText() string {
	if !a.HasAverage() {
		return ""
	}
	return strconv.FormatFloat(*a.Average, 'f', 1, 64)
}

// ReviewDraft is what the user is composing. Comment requiredness is decided
// by the caller through Strict.
type ReviewDraft struct {
	Rating  int    `json:"rating" form:"rating" validate:"required,gte=1,lte=5" msg:"Selecciona al menos una estrella"`
	Comment string `json:"comment" form:"comment"`
}

// StrictReviewDraft is the draft shape used when a comment is mandatory.
type StrictReviewDraft struct {
	Rating  int    `json:"rating" form:"rating" validate:"required,gte=1,lte=5" msg:"Selecciona al menos una estrella"`
	Comment string `json:"comment" form:"comment" validate:"required" msg:"Escribe un comentario"`
}

// Normalize trims the comment.
func (d ReviewDraft) Normalize() ReviewDraft {
	d.Comment = strings.TrimSpace(d.Comment)
	return d
}

// Strict returns the draft in its comment-required shape.
func (d ReviewDraft) Strict() StrictReviewDraft {
	return StrictReviewDraft{Rating: d.Rating, Comment: d.Comment}
}

// IsEmpty reports whether nothing has been composed yet.
func (d ReviewDraft) IsEmpty() bool {
	return d.Rating == 0 && d.Comment == ""
}
