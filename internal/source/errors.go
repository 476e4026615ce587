package source

import (
	"errors"
	"fmt"
)

// ErrProviderNotFound is the only error the aggregation core lets reach
// its caller: asking for a provider name that is not registered is a
// configuration mistake, not a network condition.
var ErrProviderNotFound = errors.New("provider not found")

// ErrNotSupported is returned by providers that lack a capability, e.g.
// page listing on a metadata-only provider.
var ErrNotSupported = errors.New("operation not supported by provider")

// ErrTimeout indicates a provider call outlived its deadline budget.
type ErrTimeout struct {
	Op  string
	Err error
}

func (e ErrTimeout) Error() string {
	return fmt.Sprintf("timeout: %s: %v", e.Op, e.Err)
}

func (e ErrTimeout) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err carries an ErrTimeout anywhere in its chain.
func IsTimeout(err error) bool {
	var t ErrTimeout
	return errors.As(err, &t)
}
