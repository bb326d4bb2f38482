package bootstrap

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/account"
)

// recordingPublisher accepts every event and records Close.
type recordingPublisher struct {
	closed bool
}

func (p *recordingPublisher) Close() error { p.closed = true; return nil }

func (p *recordingPublisher) PublishUserRegistered(ctx context.Context, evt account.UserRegisteredEvent) error {
	return nil
}

func (p *recordingPublisher) PublishExternalIDLinked(ctx context.Context, evt account.ExternalIDLinkedEvent) error {
	return nil
}

func (p *recordingPublisher) PublishUserDeleted(ctx context.Context, evt account.UserDeletedEvent) error {
	return nil
}
