package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrTimerAlreadyRunning = errors.New("timer is already running for this task")
	ErrTimerNotRunning     = errors.New("timer is not running for this task")
	ErrOpenTimeLog         = errors.New("task already has an open time log")
)
