package account

import (
	"context"
	"errors"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// Register creates a user with a bcrypt hash of password. There is no
// password policy; an empty password is hashed like any other.
// The lookup only gives the common case a cheap answer; the store's unique
// key decides concurrent registrations.
func (s *Service) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	if username == "" {
		return domain.User{}, domain.ErrMissingField("username")
	}
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	existing, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return domain.User{}, err
	}
	if existing != nil {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			return domain.User{}, err
		}
		return domain.User{}, domain.ErrHashFailed(err)
	}

	created, err := s.store.CreateUser(ctx, domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return domain.User{}, err
	}

	s.audit("account.registered", map[string]string{"email": created.Email})
	s.publish("user.registered", func() error {
		return s.pub.PublishUserRegistered(ctx, UserRegisteredEvent{
			Username:   created.Username,
			Email:      created.Email,
			OccurredAt: s.now().UTC(),
		})
	})

	return created, nil
}
