package ports

import (
	"context"

	"card-token-proxy/internal/core/domain"
)

// RequestSigner produces the authentication triple for one outbound
// tokenization call. A failure of the secure random source is fatal; the
// signer never falls back to a weaker source.
type RequestSigner interface {
	Sign(sc domain.SigningContext) (domain.RequestSignature, error)
}

// ResponseVerifier authenticates an upstream response by recomputing its
// signature from server-supplied metadata and the exact body bytes.
type ResponseVerifier interface {
	Verify(sc domain.SigningContext, receivedSignature, serverTimestamp, requestID string, rawBody []byte) domain.VerificationOutcome
}

// TokenizationGateway is the outbound HTTP edge to the remote tokenization
// service. Errors are *apperror.TransportError (network/timeout) or
// *apperror.UpstreamError (non-2xx, carrying upstream status and body).
type TokenizationGateway interface {
	RequestToken(ctx context.Context, pan string, sig domain.RequestSignature) (*domain.RemoteResponse, error)
}

// TokenizationService drives one tokenization attempt end to end:
// sign, call, verify.
type TokenizationService interface {
	Tokenize(ctx context.Context, pan string) (*TokenizationResult, error)
}

// TokenizationResult is the authenticated (or explicitly unauthenticated)
// outcome of a tokenization attempt. State says whether the payload can be
// trusted; both signatures are carried for diagnostics on mismatch.
type TokenizationResult struct {
	State             domain.VerificationState
	Payload           domain.TokenPayload
	ServerTimestamp   string
	RequestID         string
	ExpectedSignature string
	ReceivedSignature string
}
