package directory

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/alfredfullstack2024/tiendasappfrontend/internal/domain"
	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/httpclient"
)

func (c *Client) reviewTargets(id string) []target {
	paths := make([][]string, 0, len(c.contract.ReviewPaths))
	for _, p := range c.contract.ReviewPaths {
		paths = append(paths, []string{"tiendas", id, p})
	}
	return c.targets(paths...)
}

// Reviews fetches the review collection of a business, trying every review
// path on every base. The list is returned in API order, untouched.
func (c *Client) Reviews(ctx context.Context, id string) ([]domain.Review, error) {
	var found []domain.Review
	accept := func(body []byte) Outcome {
		reviews, outcome := decodeReviews(body)
		if outcome == OutcomeOK {
			found = reviews
		}
		return outcome
	}

	if _, err := c.get(ctx, "reviews", c.reviewTargets(id), accept); err != nil {
		return nil, err
	}
	return found, nil
}

type reviewPayload struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// SubmitReview posts a review. The draft must already be valid. On success it
// returns the review as echoed by the server; a nil review with a nil error
// means the server accepted the submission without echoing it.
func (c *Client) SubmitReview(ctx context.Context, id string, draft domain.ReviewDraft) (*domain.Review, error) {
	body, err := json.Marshal(reviewPayload{Rating: draft.Rating, Comment: draft.Comment})
	if err != nil {
		return nil, err
	}

	rep, err := c.send(ctx, "submit_review", c.reviewTargets(id), "application/json", body, c.contract.AttemptTimeout)
	if err != nil {
		return nil, &SubmissionError{Op: "submit_review", Message: MsgReviewFailed, Err: err}
	}
	if rep.status < 200 || rep.status > 299 {
		return nil, submissionError("submit_review", rep, MsgReviewFailed)
	}

	review, ok := decodeCreatedReview(rep.body)
	if !ok {
		c.log(ctx).WarnContext(ctx, "review accepted without a usable echo",
			slog.String("business_id", id),
			slog.Int("status", rep.status),
		)
		return nil, nil
	}
	c.log(ctx).InfoContext(ctx, "review submitted",
		slog.String("business_id", id),
		slog.Int("rating", review.Rating),
	)
	return &review, nil
}

func submissionError(op string, rep *reply, fallback string) *SubmissionError {
	_, msg := httpclient.ServerMessage(rep.body)
	if msg == "" {
		msg = fallback
	}
	return &SubmissionError{Op: op, Status: rep.status, Message: msg}
}
