package jwtx

import "errors"

var (
	// ErrMalformed reports a token that is not a structurally valid JWT.
	ErrMalformed = errors.New("jwtx: malformed token")

	// ErrSignature reports a signature that does not match the payload.
	// Tampering with either segment lands here because the MAC is always
	// recomputed over the payload as received.
	ErrSignature = errors.New("jwtx: signature mismatch")

	// ErrExpired reports an expired token.
	ErrExpired = errors.New("jwtx: token expired")

	// ErrNotYetValid reports a token used before its nbf claim.
	ErrNotYetValid = errors.New("jwtx: token not yet valid")

	// ErrIssuer reports an issuer claim mismatch.
	ErrIssuer = errors.New("jwtx: issuer mismatch")

	// ErrWeakSecret reports a signing secret below the minimum length.
	ErrWeakSecret = errors.New("jwtx: signing secret too short")
)
