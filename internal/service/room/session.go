package room

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Sessions are anonymous: issuing one mints a fresh stable identity. The
// identity is what the host check compares against the room's stored host
// id; there is no stronger authorization than that equality, by inherited
// design.

type IssueSessionResponse struct {
	UserID string
	Token  string
}

func (s service) IssueSession() (IssueSessionResponse, error) {
	userID := uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"iat":     s.clock.Now().Unix(),
	})

	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return IssueSessionResponse{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return IssueSessionResponse{
		UserID: userID,
		Token:  signed,
	}, nil
}

func (s service) ParseSession(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, jwt.MapClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", token.Header["alg"])
		}

		return []byte(s.secret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidSession
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidSession
	}

	return userID, nil
}
