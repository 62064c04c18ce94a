package service

import (
	"context"
	"errors"
	"time"

	"card-token-proxy/internal/core/domain"
	"card-token-proxy/internal/core/ports"
	"card-token-proxy/pkg/apperror"

	"github.com/rs/zerolog"
)

// tokenizationService orchestrates one tokenization attempt: sign the
// request, call the remote endpoint, authenticate the reply. Attempts are
// stateless and share nothing but the immutable signing context, so they may
// run concurrently without coordination.
type tokenizationService struct {
	sc          domain.SigningContext
	signer      ports.RequestSigner
	verifier    ports.ResponseVerifier
	gateway     ports.TokenizationGateway
	maxAttempts int
	baseDelay   time.Duration
	log         zerolog.Logger
}

// NewTokenizationService creates the orchestrator. maxAttempts is the total
// number of outbound calls including the first; baseDelay is the first retry
// interval, doubled per attempt. Retries apply to transport failures and
// upstream 5xx only, never to validation or authentication outcomes.
func NewTokenizationService(
	sc domain.SigningContext,
	signer ports.RequestSigner,
	verifier ports.ResponseVerifier,
	gateway ports.TokenizationGateway,
	maxAttempts int,
	baseDelay time.Duration,
	log zerolog.Logger,
) ports.TokenizationService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &tokenizationService{
		sc:          sc,
		signer:      signer,
		verifier:    verifier,
		gateway:     gateway,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		log:         log,
	}
}

// Tokenize exchanges a card PAN for a token and reports how the response was
// authenticated. A signature mismatch is returned as a result with
// VerificationFailed, not as an error.
func (s *tokenizationService) Tokenize(ctx context.Context, pan string) (*ports.TokenizationResult, error) {
	resp, err := s.callWithRetries(ctx, pan)
	if err != nil {
		return nil, err
	}

	result := &ports.TokenizationResult{
		Payload:         resp.Payload,
		ServerTimestamp: resp.Timestamp,
		RequestID:       resp.RequestID,
	}

	if resp.Signature == "" || resp.Timestamp == "" || resp.RequestID == "" {
		// Nothing to verify against. The payload is unauthenticated, which
		// callers must treat as a distinct state from "verified valid".
		s.log.Warn().
			Bool("has_signature", resp.Signature != "").
			Bool("has_timestamp", resp.Timestamp != "").
			Bool("has_request_id", resp.RequestID != "").
			Msg("response verification skipped: missing signature material")
		result.State = domain.VerificationSkipped
		return result, nil
	}

	outcome := s.verifier.Verify(s.sc, resp.Signature, resp.Timestamp, resp.RequestID, resp.RawBody)
	result.ExpectedSignature = outcome.ExpectedSignature
	result.ReceivedSignature = outcome.ReceivedSignature
	if outcome.Valid {
		result.State = domain.VerificationValid
	} else {
		result.State = domain.VerificationFailed
		s.log.Warn().
			Str("expected_signature", outcome.ExpectedSignature).
			Str("received_signature", outcome.ReceivedSignature).
			Str("request_id", resp.RequestID).
			Msg("response signature mismatch")
	}
	return result, nil
}

// callWithRetries signs and issues the outbound call, retrying transient
// failures with exponential backoff. Each attempt gets a fresh triple:
// nonces are single use.
func (s *tokenizationService) callWithRetries(ctx context.Context, pan string) (*domain.RemoteResponse, error) {
	var lastErr error
	delay := s.baseDelay

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, &apperror.TransportError{Err: ctx.Err()}
			case <-time.After(delay):
			}
			delay *= 2
			s.log.Warn().Int("attempt", attempt).Err(lastErr).Msg("retrying tokenization call")
		}

		sig, err := s.signer.Sign(s.sc)
		if err != nil {
			return nil, apperror.InternalError(err)
		}

		resp, err := s.gateway.RequestToken(ctx, pan, sig)
		if err == nil {
			return resp, nil
		}
		if !retryable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// retryable reports whether an outbound failure may be transient: network
// errors always, upstream replies only when server-side.
func retryable(err error) bool {
	var upstreamErr *apperror.UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.Retryable()
	}
	var transportErr *apperror.TransportError
	return errors.As(err, &transportErr)
}
