// Package errors maps dashboard failures onto RFC 7807 problem responses.
//
// Handlers raise APIError for bad requests; services raise DomainError
// tagged with a Kind. ErrorHandler turns either, plus loader and validator
// errors, into a problem with the right status. A dataset.DataNotFoundError
// becomes a 404 listing every location tried. Anything unrecognised is a
// 500 that does not leak internals.
package errors
