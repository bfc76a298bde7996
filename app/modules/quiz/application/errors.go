package quizservice

import "errors"

var (
	// ErrSessionExists is returned when a guild already has a live session.
	ErrSessionExists = errors.New("session already exists for guild")
	// ErrNoSession is returned for operations that need a live session.
	ErrNoSession = errors.New("no session for guild")
	// ErrNoMatchingSongs is returned when the configured filters leave no
	// candidate songs to play.
	ErrNoMatchingSongs = errors.New("no songs match the current configuration")
)
