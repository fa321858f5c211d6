package extractor

import "fmt"

// ErrorKind names the ways description extraction can fail. The API layer
// maps kinds onto response statuses.
type ErrorKind string

const (
	KindUnsupportedPlatform ErrorKind = "unsupported_platform"
	KindInvalidURL          ErrorKind = "invalid_url"
	KindTimeout             ErrorKind = "timeout"
	KindNetwork             ErrorKind = "network"
	KindDescriptionNotFound ErrorKind = "description_not_found"
)

type Error struct {
	Kind ErrorKind
	URL  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("extraction failed (%s): %s", e.Kind, e.URL)
	}
	return fmt.Sprintf("extraction failed (%s): %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, url string, err error) *Error {
	return &Error{Kind: kind, URL: url, Err: err}
}
