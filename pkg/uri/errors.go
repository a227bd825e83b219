package uri

import "fmt"

// BadURIError reports a URI that failed to parse or validate. Every parse
// path in this package fails with BadURIError; no partial values are ever
// returned.
type BadURIError struct {
	Reason string
}

func (e *BadURIError) Error() string {
	return fmt.Sprintf("bad uri: %s", e.Reason)
}

func badURI(format string, args ...interface{}) error {
	return &BadURIError{Reason: fmt.Sprintf(format, args...)}
}
