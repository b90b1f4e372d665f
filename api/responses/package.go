// Package responses provides response helpers for the books API. Errors use
// the RFC 7807 Problem Details format; successes keep the plain text and
// JSON shapes the API has always returned.
package responses
