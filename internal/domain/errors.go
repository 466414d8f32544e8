package domain

import "errors"

var (
	ErrKeyNotFound        = errors.New("key not found")
	ErrCorruptStore       = errors.New("local store is corrupt")
	ErrMalformedPayload   = errors.New("malformed payload")
	ErrStreamClosedByPeer = errors.New("stream closed by peer")
	ErrIncompleteSession  = errors.New("session requires both identity and token")
	ErrUnknownPrediction  = errors.New("unknown prediction")
	ErrUnknownFileType    = errors.New("unknown file type")
)
