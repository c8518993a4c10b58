package downstream

import "fmt"

// HTTPError is a non-2xx answer from the downstream API. Status code and
// response body are carried verbatim; nothing is collapsed into a generic
// message.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("downstream request failed with status %d: %s", e.StatusCode, e.Body)
}

// TransportError is a failure to reach the downstream API at all: timeout,
// connection refused, canceled context. Distinct from HTTPError, which
// means the API answered.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("downstream request transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError is a 2xx downstream answer whose body did not decode into the
// operation's expected shape (including an empty body). The original
// decoding error is preserved as the cause.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse downstream response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
