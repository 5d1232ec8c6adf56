package domain

import "errors"

var (
	ErrJobNotFound          = errors.New("job not found")
	ErrRunNotFound          = errors.New("run not found")
	ErrRunNotReady          = errors.New("run has not completed")
	ErrRunFailed            = errors.New("run failed")
	ErrRecordNotFound       = errors.New("record not found in run")
	ErrExplainerUnavailable = errors.New("explanation service is not configured")
)
