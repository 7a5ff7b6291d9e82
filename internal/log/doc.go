// Package log provides a slog handler that keeps secrets out of cubegrab's
// log output.
//
// Panorama tiles are often served from signed CDN URLs and only to clients
// carrying the viewer's cookies. Tile URLs and request settings are logged
// freely throughout the acquisition, so the handler masks:
//   - attributes whose key names a secret (cookie, authorization, token, ...)
//   - values that look like credentials (bearer and basic auth, JWTs, AWS keys)
//   - signature query parameters and user passwords inside any URL found in
//     a string or error value
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("fetching tile",
//	    "url", "https://cdn.example/p/0/1/0_0.jpg?Signature=abc", // Signature=***REDACTED***
//	    "cookie", "session=abc123",                              // ***REDACTED***
//	)
package log
