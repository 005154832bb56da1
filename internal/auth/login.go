package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
	"github.com/UnknownOlympus/athena/internal/models"
)

var (
	ErrLogin              = errors.New("login failed")
	ErrMissingCredentials = errors.New("email and password are required")
)

// Authenticator exchanges credentials for an upstream token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (models.LoginResult, error)
}

// Login validates the credentials locally before calling the upstream API.
func Login(ctx context.Context, a Authenticator, email, password string) (models.LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return models.LoginResult{}, ErrMissingCredentials
	}

	res, err := a.Login(ctx, email, password)
	if err != nil {
		return models.LoginResult{}, fmt.Errorf("%w: %w", ErrLogin, err)
	}
	if res.Token == "" {
		return models.LoginResult{}, fmt.Errorf("%w: response carries no token", ErrLogin)
	}

	return res, nil
}

// RetryLogin logs the service account in, retrying a fixed number of times.
func RetryLogin(
	ctx context.Context,
	log *slog.Logger,
	a Authenticator,
	email, password string,
	retries int,
	delay time.Duration,
) (*Session, error) {
	var err error

	for index := range retries {
		var res models.LoginResult
		res, err = Login(ctx, a, email, password)
		if err == nil {
			log.InfoContext(ctx, "Successfully logged in", "user", res.UserEmail)
			return NewSession(res), nil
		}
		if errors.Is(err, ErrMissingCredentials) {
			return nil, err
		}

		log.WarnContext(ctx, "Failed to login, retrying...", "attempt", index+1, "of", retries, sl.Err(err))
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("login interrupted: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	finalError := errors.New("failed to login after multiple retries")
	log.ErrorContext(ctx, finalError.Error(), "last_error", err)
	return nil, fmt.Errorf("%w: %w", finalError, err)
}
