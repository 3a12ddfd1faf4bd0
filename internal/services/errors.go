package services

import (
	"errors"

	"brokemate/internal/assistant"
)

var (
	ErrMissingUser          = errors.New("missing user id")
	ErrNotFound             = errors.New("not found")
	ErrProfileExists        = errors.New("profile name already taken")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrInvalidPIN           = errors.New("invalid PIN")
	ErrPINMismatch          = errors.New("PIN confirmation does not match")
	ErrAdapterFailed        = errors.New("assistant request failed")
	ErrAdapterContract      = errors.New("assistant response violates contract")
	ErrStaleResponse        = errors.New("assistant response superseded")
	ErrAssistantUnavailable = assistant.ErrUnavailable
)
