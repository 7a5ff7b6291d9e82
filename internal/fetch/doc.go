// Package fetch retrieves tile bytes and classifies every response into a
// tagged outcome.
//
// Probing discovers structure from presence and absence, so the difference
// between "the provider says this tile does not exist" and "the request did
// not get an answer" matters:
//
//   - OutcomeFound: a 2xx response, the body is returned
//   - OutcomeAbsent: an authoritative negative (404, 410, other 4xx); never retried
//   - OutcomeTransient: 408, 429, 5xx, transport errors and timeouts; retried
//     with exponential backoff, then escalated as *TransientError
//
// Only OutcomeAbsent may end a probe loop. Callers never see a transient
// outcome in a Response: it is either retried into a definite answer or
// returned as an error.
package fetch
