package service

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"card-token-proxy/internal/core/domain"

	"github.com/rs/zerolog"
)

// trailingWhitespace is the cutset stripped from the end of the wire body
// before verification. Leading bytes and interior whitespace stay untouched.
const trailingWhitespace = " \t\r\n"

// HMACResponseVerifier authenticates upstream responses. The signed message
// is serverTimestamp+requestID+body (unlike the request side it omits the
// merchant id), where body is the exact wire payload with only trailing
// whitespace removed. The remote service appends a newline after computing
// its own signature, so the pre-append form must be reproduced byte for byte.
type HMACResponseVerifier struct {
	log zerolog.Logger
}

// NewHMACResponseVerifier creates a verifier.
func NewHMACResponseVerifier(log zerolog.Logger) *HMACResponseVerifier {
	return &HMACResponseVerifier{log: log}
}

// Verify recomputes the expected signature and compares it with the received
// one, case-insensitively and in constant time. A mismatch is a normal
// outcome, never an error.
func (v *HMACResponseVerifier) Verify(sc domain.SigningContext, receivedSignature, serverTimestamp, requestID string, rawBody []byte) domain.VerificationOutcome {
	trimmed := bytes.TrimRight(rawBody, trailingWhitespace)

	mac := hmac.New(sha256.New, []byte(sc.SecretKey))
	mac.Write([]byte(serverTimestamp))
	mac.Write([]byte(requestID))
	mac.Write(trimmed)
	expected := strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))

	valid := hmac.Equal([]byte(expected), []byte(strings.ToUpper(receivedSignature)))

	v.log.Debug().
		Str("server_timestamp", serverTimestamp).
		Str("request_id", requestID).
		Str("expected_signature", expected).
		Str("received_signature", receivedSignature).
		Bool("valid", valid).
		Msg("response signature checked")

	return domain.VerificationOutcome{
		Valid:             valid,
		ExpectedSignature: expected,
		ReceivedSignature: receivedSignature,
	}
}
