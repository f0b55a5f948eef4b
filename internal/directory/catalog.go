package directory

import (
	"context"
	"log/slog"

	"github.com/alfredfullstack2024/tiendasappfrontend/internal/domain"
)

// Categories fetches GET {base}/categorias.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var found []string
	accept := func(body []byte) Outcome {
		names, outcome := decodeCategories(body)
		if outcome == OutcomeOK {
			found = names
		}
		return outcome
	}

	if _, err := c.get(ctx, "categories", c.targets([]string{"categorias"}), accept); err != nil {
		return nil, err
	}
	return found, nil
}

// ByCategory fetches GET {base}/tiendas/categoria/{categoria}.
func (c *Client) ByCategory(ctx context.Context, category string) ([]domain.Business, error) {
	var (
		found   []domain.Business
		dropped int
	)
	accept := func(body []byte) Outcome {
		list, n, outcome := decodeBusinessList(body, c.contract.IDFields)
		if outcome == OutcomeOK {
			found, dropped = list, n
		}
		return outcome
	}

	if _, err := c.get(ctx, "by_category", c.targets([]string{"tiendas", "categoria", category}), accept); err != nil {
		return nil, err
	}
	if dropped > 0 {
		c.log(ctx).WarnContext(ctx, "dropped listing entries without id",
			slog.String("category", category),
			slog.Int("dropped", dropped),
		)
	}
	return found, nil
}
