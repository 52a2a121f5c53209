package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	roomRepo "github.com/gigaba/overlay-server/internal/repository/room"
)

const (
	AccessModeOpen = "open"
	AccessModeJoin = "join"
)

// IssueAccessToken mints a one-time capability for embedding in a share
// link. Whoever consumes it first within the TTL gets the mode; everyone
// after that, or after expiry, is treated as a bare overlay viewer.
func (s service) IssueAccessToken(ctx context.Context, mode string) (string, error) {
	if mode != AccessModeOpen && mode != AccessModeJoin {
		return "", fmt.Errorf("unknown access token mode %q", mode)
	}

	token := uuid.NewString()
	if err := s.roomRepo.SetAccessToken(ctx, &roomRepo.SetAccessTokenParams{
		Token: token,
		Mode:  mode,
	}); err != nil {
		return "", fmt.Errorf("failed to store access token: %w", err)
	}

	return token, nil
}

func (s service) ConsumeAccessToken(ctx context.Context, token string) (string, error) {
	mode, err := s.roomRepo.ConsumeAccessToken(ctx, token)
	if err != nil {
		if errors.Is(err, roomRepo.ErrAccessTokenNotFound) {
			return "", ErrAccessTokenNotFound
		}
		return "", err
	}

	return mode, nil
}
