package directory

import (
	"context"

	"github.com/alfredfullstack2024/tiendasappfrontend/internal/domain"
)

// Business fetches GET {base}/tiendas/{id}. The first candidate that answers
// 2xx with a non-empty id wins. On exhaustion the error is an
// *ExhaustedError that unwraps to ErrNotFound if any candidate answered a
// well-formed not-found, or to ErrServiceUnavail otherwise.
func (c *Client) Business(ctx context.Context, id string) (*domain.Business, error) {
	var found domain.Business
	accept := func(body []byte) Outcome {
		b, outcome := decodeBusiness(body, c.contract.IDFields)
		if outcome == OutcomeOK {
			found = b
		}
		return outcome
	}

	if _, err := c.get(ctx, "business", c.targets([]string{"tiendas", id}), accept); err != nil {
		return nil, err
	}
	return &found, nil
}
