package affiliate

import "errors"

// Every import failure wraps exactly one of these sentinels so callers can map
// it to a response status while keeping the upstream's raw message.
var (
	ErrIdentifierNotFound     = errors.New("no product identifier found in URL")
	ErrMissingCredentials     = errors.New("amazon API credentials not configured")
	ErrUpstreamRejected       = errors.New("upstream rejected the request")
	ErrProductNotFound        = errors.New("product not found")
	ErrTransport              = errors.New("upstream transport failure")
	ErrUpstreamBlocked        = errors.New("upstream blocked the request")
	ErrExtractionFailed       = errors.New("could not extract product data")
	ErrIncompleteUpstreamData = errors.New("incomplete upstream product data")
)
