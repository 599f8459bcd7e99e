package messaging

import (
	"context"

	"github.com/feral-file/gpp-indexer/internal/domain"
)

// Publisher defines the interface for announcing table updates to a message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishTableUpdated announces a committed wide table
	PublishTableUpdated(ctx context.Context, event *domain.TableUpdatedEvent) error
	// Close closes the connection
	Close()
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event, used when no broker is configured
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) PublishTableUpdated(context.Context, *domain.TableUpdatedEvent) error {
	return nil
}

func (noopPublisher) Close() {}
