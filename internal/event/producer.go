package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alfredfullstack2024/tiendasappfrontend/internal/domain"
	pkgkafka "github.com/alfredfullstack2024/tiendasappfrontend/pkg/kafka"
	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/logger"
)

// Aggregate types.
const (
	AggregateTypeReview   = "review"
	AggregateTypeBusiness = "tienda"
)

// Event types.
const (
	TypeReviewSubmitted    = "review.submitted"
	TypeBusinessRegistered = "tienda.registered"
)

// SourceWeb identifies events originating from the web front end.
const SourceWeb = "tiendas-web"

const publishTimeout = 5 * time.Second

// ReviewSubmittedData is the payload for a review.submitted event.
type ReviewSubmittedData struct {
	BusinessID string `json:"business_id"`
	ReviewID   string `json:"review_id,omitempty"`
	Rating     int    `json:"rating"`
	HasComment bool   `json:"has_comment"`
}

// BusinessRegisteredData is the payload for a tienda.registered event.
type BusinessRegisteredData struct {
	BusinessID string `json:"business_id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Photos     int    `json:"photos"`
}

// Publisher is the part of the Kafka producer used here.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes activity events. A nil Publisher turns every call into
// a no-op.
type Producer struct {
	kafka  Publisher
	prefix string
	logger *slog.Logger
}

// NewProducer creates a producer writing to topics under prefix.
func NewProducer(kafka Publisher, prefix string, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, prefix: prefix, logger: logger}
}

// Disabled returns a producer that publishes nothing.
func Disabled(logger *slog.Logger) *Producer {
	return &Producer{logger: logger}
}

// Enabled reports whether events are actually published.
func (p *Producer) Enabled() bool {
	return p != nil && p.kafka != nil
}

// PublishReviewSubmitted publishes a review.submitted event.
func (p *Producer) PublishReviewSubmitted(ctx context.Context, businessID string, review domain.Review) error {
	if !p.Enabled() {
		return nil
	}
	data := ReviewSubmittedData{
		BusinessID: businessID,
		ReviewID:   review.ID,
		Rating:     review.Rating,
		HasComment: review.Comment != "",
	}
	agg := pkgkafka.Aggregate{ID: businessID, Type: AggregateTypeReview}
	return p.publish(ctx, pkgkafka.Topic(p.prefix, "review", "submitted"), TypeReviewSubmitted, agg, data)
}

// PublishBusinessRegistered publishes a tienda.registered event.
func (p *Producer) PublishBusinessRegistered(ctx context.Context, b *domain.Business) error {
	if !p.Enabled() || b == nil {
		return nil
	}
	data := BusinessRegisteredData{
		BusinessID: b.ID,
		Name:       b.Name,
		Category:   b.Category,
		Photos:     len(b.Photos),
	}
	agg := pkgkafka.Aggregate{ID: b.ID, Type: AggregateTypeBusiness}
	return p.publish(ctx, pkgkafka.Topic(p.prefix, "tienda", "registered"), TypeBusinessRegistered, agg, data)
}

func (p *Producer) publish(ctx context.Context, topic, eventType string, agg pkgkafka.Aggregate, data any) error {
	event, err := pkgkafka.NewEvent(eventType, agg, SourceWeb, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	event.WithCorrelationID(logger.CorrelationIDFromContext(ctx)).
		WithMetadata("view_id", logger.ViewIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", agg.ID),
	)
	return nil
}

// ReviewSubmitted publishes in the background so the caller never waits on
// the broker. Failures are logged and dropped.
func (p *Producer) ReviewSubmitted(ctx context.Context, businessID string, review domain.Review) {
	if !p.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := p.PublishReviewSubmitted(ctx, businessID, review); err != nil {
			logger.WithContext(ctx, p.logger).WarnContext(ctx, "review event dropped",
				slog.String("business_id", businessID),
				slog.String("error", err.Error()),
			)
		}
	}()
}
