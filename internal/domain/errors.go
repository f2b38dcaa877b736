package domain

import "errors"

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrNicknameTaken = errors.New("nickname already in use")
	ErrNotInRoom     = errors.New("user not in a room")
	ErrAlreadyInRoom = errors.New("user already in a room")
	ErrNoFreePin     = errors.New("no free pin available")
)
