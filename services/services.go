// Package services holds the storefront's business rules. Services take
// repository interfaces and return apperrors so handlers can map failures
// to HTTP statuses without inspecting storage errors.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"storefront-service/apperrors"
	"storefront-service/models"
	"storefront-service/repository"
)

// EventPublisher delivers order events to the broker. A nil publisher disables events.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event models.OrderEvent, priority uint8) error
	PublishDelayedEvent(ctx context.Context, event models.OrderEvent, delay time.Duration) error
}

func resolveUser(ctx context.Context, users repository.UserRepository, email string) (*models.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, apperrors.Unauthorized("User not authenticated")
	}
	u, err := users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to load user", err)
	}
	return u, nil
}

// storeErr maps a repository failure to a client-facing error.
func storeErr(err error, what string) error {
	var appErr *apperrors.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound(what + " not found")
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.InvalidRequest("%s already exists", what)
	default:
		return apperrors.Internal("Failed to access "+strings.ToLower(what), err)
	}
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a display name into a URL-safe lowercase slug.
func Slugify(s string) string {
	return strings.Trim(slugInvalid.ReplaceAllString(strings.ToLower(s), "-"), "-")
}
