package account

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// LinkExternalID overwrites the user's external id.
// External ids are not unique across users.
func (s *Service) LinkExternalID(ctx context.Context, email, externalID string) error {
	if email == "" {
		return domain.ErrMissingField("user_email")
	}
	if externalID == "" {
		return domain.ErrMissingField("external_id")
	}

	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		return domain.ErrUserNotFound()
	}

	// A zero count means the user vanished after the lookup; the link still
	// targeted an existing user at the time of the request.
	if _, err := s.store.SetExternalID(ctx, email, externalID); err != nil {
		return err
	}

	s.audit("account.linked", map[string]string{"email": email, "external_id": externalID})
	s.publish("external_id.linked", func() error {
		return s.pub.PublishExternalIDLinked(ctx, ExternalIDLinkedEvent{
			Email:      email,
			ExternalID: externalID,
			OccurredAt: s.now().UTC(),
		})
	})
	return nil
}
