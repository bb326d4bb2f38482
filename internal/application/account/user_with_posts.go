package account

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

type UserWithPosts struct {
	User  domain.User
	Posts []domain.Post
}

// GetUserWithPosts joins a user with every post they own (unordered, unpaged).
func (s *Service) GetUserWithPosts(ctx context.Context, email string) (UserWithPosts, error) {
	if email == "" {
		return UserWithPosts{}, domain.ErrMissingField("user_email")
	}

	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return UserWithPosts{}, err
	}
	if u == nil {
		return UserWithPosts{}, domain.ErrUserNotFound()
	}

	posts, err := s.store.ListPostsByOwner(ctx, email)
	if err != nil {
		return UserWithPosts{}, err
	}
	if posts == nil {
		posts = []domain.Post{}
	}

	return UserWithPosts{User: *u, Posts: posts}, nil
}
