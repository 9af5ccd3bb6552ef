package domain

import "errors"

var (
	ErrSendingReplyFailed  = errors.New("failed to send reply")
	ErrWorkstationNotFound = errors.New("workstation not found")
	ErrDuplicateUUID       = errors.New("uuid assigned to more than one workstation")
	ErrInvalidUUID         = errors.New("invalid workstation uuid")
	ErrMissingConfig       = errors.New("missing required configuration")
	ErrInvalidConfig       = errors.New("invalid configuration")
)
