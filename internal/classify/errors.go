package classify

import "errors"

// ErrInvalidURL is returned when no rule matches a URL.
var ErrInvalidURL = errors.New("url does not match a supported panorama shape")
