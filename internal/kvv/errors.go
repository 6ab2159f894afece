package kvv

import "errors"

// Error kinds returned by the client. Callers match them with errors.Is; the
// underlying cause stays wrapped alongside.
var (
	// ErrTransport covers connection failures and timeouts.
	ErrTransport = errors.New("kvv: transport error")
	// ErrProtocol covers non-200 responses and non-JSON content types.
	ErrProtocol = errors.New("kvv: protocol error")
	// ErrParse means the body was not the expected structure.
	ErrParse = errors.New("kvv: unexpected response shape")
	// ErrEmptyResult means upstream returned no usable departures at all. That
	// can mean "nothing is running" or a service hiccup.
	ErrEmptyResult = errors.New("kvv: empty result")
	// ErrInvalidQuery is returned for a blank station search.
	ErrInvalidQuery = errors.New("kvv: search query must not be empty")
)
