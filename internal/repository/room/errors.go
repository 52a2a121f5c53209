package room

import "errors"

var (
	ErrRoomNotFound             = errors.New("room not found")
	ErrRoomAlreadyExists        = errors.New("room already exists")
	ErrTimerNotFound            = errors.New("timer not found")
	ErrPlayerNotFound           = errors.New("player not found")
	ErrAccessTokenNotFound      = errors.New("access token not found")
	ErrAccessTokenAlreadyExists = errors.New("access token already exists")
)
