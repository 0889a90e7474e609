package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/agora/internal/app/models"
	"github.com/yigit/agora/internal/app/repositories"
	"github.com/yigit/agora/internal/pkg/notifier"
)

func recipients(users []*models.User) []notifier.Recipient {
	out := make([]notifier.Recipient, 0, len(users))
	for _, u := range users {
		out = append(out, notifier.Recipient{Email: u.Email, Name: u.FullName()})
	}
	return out
}

// notifyParents publishes the event built for a student's parents.
// A lookup failure is logged and the event dropped; the caller's write already succeeded.
func notifyParents(
	ctx context.Context,
	userRepo repositories.IUserRepository,
	publisher notifier.Publisher,
	logger zerolog.Logger,
	studentID int64,
	build func([]notifier.Recipient) notifier.Event,
) {
	parents, err := userRepo.ListParents(ctx, studentID)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error loading parents for notification")
		return
	}
	publish(ctx, publisher, logger, build(recipients(parents)))
}

// notifyRole publishes the event built for every active holder of role
func notifyRole(
	ctx context.Context,
	userRepo repositories.IUserRepository,
	publisher notifier.Publisher,
	logger zerolog.Logger,
	role models.RoleType,
	build func([]notifier.Recipient) notifier.Event,
) {
	users, err := userRepo.ListByRole(ctx, role)
	if err != nil {
		logger.Error().Err(err).Str("role", string(role)).Msg("Error loading recipients for notification")
		return
	}
	publish(ctx, publisher, logger, build(recipients(users)))
}

func publish(ctx context.Context, publisher notifier.Publisher, logger zerolog.Logger, ev notifier.Event) {
	if !publisher.Publish(ctx, ev) {
		logger.Warn().Str("kind", string(ev.Kind)).Msg("Notification dropped")
	}
}
