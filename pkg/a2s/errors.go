package a2s

import "errors"

var (
	// ErrTimeout is returned when a send or receive does not complete before the deadline.
	ErrTimeout = errors.New("a2s: query timeout")

	// ErrTruncated is returned by the reader when fewer bytes remain than a field needs.
	ErrTruncated = errors.New("a2s: truncated data")

	// ErrMalformedInfo wraps any decode failure of an A2S_INFO reply.
	ErrMalformedInfo = errors.New("a2s: malformed info response")

	// ErrMalformedPlayers wraps any decode failure of an A2S_PLAYER reply.
	ErrMalformedPlayers = errors.New("a2s: malformed player response")

	// ErrMultiPacket is returned when the server answers with a split (multi-packet) reply.
	ErrMultiPacket = errors.New("a2s: multi-packet response not supported")
)
