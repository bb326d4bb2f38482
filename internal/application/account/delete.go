package account

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

type DeleteResult struct {
	PostsDeleted int64
	UsersDeleted int64
}

// DeleteUser removes the user's posts and then the user.
//
// Posts go first: if the store cannot make the pair atomic, an interruption
// leaves a user without posts, and a retry converges because deleting an
// already-deleted user is a no-op.
func (s *Service) DeleteUser(ctx context.Context, email string) (DeleteResult, error) {
	if email == "" {
		return DeleteResult{}, domain.ErrMissingField("user_email")
	}

	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return DeleteResult{}, err
	}
	if u == nil {
		return DeleteResult{}, domain.ErrUserNotFound()
	}

	var res DeleteResult
	err = s.store.WithTx(ctx, func(r Repo) error {
		n, err := r.DeletePostsByOwner(ctx, email)
		if err != nil {
			return err
		}
		res.PostsDeleted = n

		n, err = r.DeleteUser(ctx, email)
		if err != nil {
			return err
		}
		res.UsersDeleted = n
		return nil
	})
	if err != nil {
		return DeleteResult{}, err
	}

	s.audit("account.deleted", map[string]string{"email": email})
	s.publish("user.deleted", func() error {
		return s.pub.PublishUserDeleted(ctx, UserDeletedEvent{
			Email:        email,
			PostsDeleted: res.PostsDeleted,
			OccurredAt:   s.now().UTC(),
		})
	})

	return res, nil
}
