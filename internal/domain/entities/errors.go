package entities

import "errors"

// Domain errors
var (
	ErrInvalidMeetingID = errors.New("invalid meeting id")
	ErrMeetingNotFound  = errors.New("meeting not found")
	ErrInvalidLanguage  = errors.New("invalid language code")
	ErrEmptyMedia       = errors.New("media file is empty")
	ErrMediaNotFound    = errors.New("media object not found")
	ErrRunInProgress    = errors.New("pipeline run already in progress")
	ErrQueueFull        = errors.New("pipeline queue is full")
)
