package api

import "errors"

var (
	// ErrBadRequest marks malformed or failed-validation requests.
	ErrBadRequest = errors.New("bad request")
	// ErrMethodNotAllowed marks requests using an unsupported verb.
	ErrMethodNotAllowed = errors.New("method not allowed")
)
