package domain

import "errors"

var (
	ErrUnparsableOutput  = errors.New("probe output not parsable")
	ErrMissingCredential = errors.New("missing pushover credential")
)
