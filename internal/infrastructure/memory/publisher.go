package memory

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/account"
	zlog "github.com/rs/zerolog/log"
)

// NoopPublisher logs events instead of sending them. Used when RABBIT_URL is empty.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (p *NoopPublisher) PublishUserRegistered(ctx context.Context, evt account.UserRegisteredEvent) error {
	zlog.Debug().Str("email", evt.Email).Str("username", evt.Username).Msg("[noop-pub] user registered")
	return nil
}

func (p *NoopPublisher) PublishExternalIDLinked(ctx context.Context, evt account.ExternalIDLinkedEvent) error {
	zlog.Debug().Str("email", evt.Email).Str("external_id", evt.ExternalID).Msg("[noop-pub] external id linked")
	return nil
}

func (p *NoopPublisher) PublishUserDeleted(ctx context.Context, evt account.UserDeletedEvent) error {
	zlog.Debug().Str("email", evt.Email).Int64("posts_deleted", evt.PostsDeleted).Msg("[noop-pub] user deleted")
	return nil
}
