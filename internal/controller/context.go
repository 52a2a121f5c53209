package controller

import "context"

type contextKey int

const (
	userIDCtxKey contextKey = iota
	roomIDCtxKey
)

func (c controller) getUserIDFromCtx(ctx context.Context) string {
	userID, ok := ctx.Value(userIDCtxKey).(string)
	if !ok {
		return ""
	}

	return userID
}

func (c controller) getRoomIDFromCtx(ctx context.Context) string {
	roomID, ok := ctx.Value(roomIDCtxKey).(string)
	if !ok {
		return ""
	}

	return roomID
}
