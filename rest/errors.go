package rest

import (
	"errors"

	"oss.nandlabs.io/opspulse/l3"
)

var logger = l3.Get()

// Sentinel errors returned by Server construction and ServerContext parameter
// lookups.
var (
	ErrNilOptions            = errors.New("rest: server options must not be nil")
	ErrInvalidID              = errors.New("rest: server options Id must not be empty")
	ErrInvalidListenHost      = errors.New("rest: server options ListenHost must not be empty")
	ErrInvalidListenPort      = errors.New("rest: server options ListenPort must be positive")
	ErrInvalidPrivateKeyPath  = errors.New("rest: PrivateKeyPath is required when EnableTLS is set")
	ErrInvalidCertPath        = errors.New("rest: CertPath is required when EnableTLS is set")
	ErrInvalidParamType       = errors.New("rest: unsupported Paramtype")
)
