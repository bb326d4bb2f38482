package account

import (
	"context"
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

/*
Repo
----
Persistence port for users and their posts.
Only describes WHAT the account service needs, not HOW it's stored.
Absence is not an error: FindUserByEmail returns (nil, nil).
*/
type Repo interface {
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	// CreateUser must fail with domain.ErrEmailAlreadyExists when the email is taken,
	// enforced by the store itself rather than a prior lookup.
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
	SetExternalID(ctx context.Context, email, externalID string) (int64, error)

	ListPostsByOwner(ctx context.Context, email string) ([]domain.Post, error)
	DeletePostsByOwner(ctx context.Context, email string) (int64, error)
	DeleteUser(ctx context.Context, email string) (int64, error)
}

/*
Store
-----
Repo plus a unit of work. WithTx runs fn against a Repo bound to one
transaction; stores without transactions must still run fn's calls in order.
*/
type Store interface {
	Repo
	WithTx(ctx context.Context, fn func(r Repo) error) error
}

/*
PasswordHasher
--------------
Abstracts bcrypt.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
EventPublisher
--------------
Publishes account lifecycle events to RabbitMQ.
Delivery is best effort: failures are logged, never returned to callers.
*/
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, evt UserRegisteredEvent) error
	PublishExternalIDLinked(ctx context.Context, evt ExternalIDLinkedEvent) error
	PublishUserDeleted(ctx context.Context, evt UserDeletedEvent) error
}

type UserRegisteredEvent struct {
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

type ExternalIDLinkedEvent struct {
	Email      string    `json:"email"`
	ExternalID string    `json:"external_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type UserDeletedEvent struct {
	Email        string    `json:"email"`
	PostsDeleted int64     `json:"posts_deleted"`
	OccurredAt   time.Time `json:"occurred_at"`
}
