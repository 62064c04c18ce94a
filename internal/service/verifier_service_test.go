package service

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"card-token-proxy/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// upstreamSign reproduces the server side of the response protocol:
// HMAC-SHA256 over timestamp+requestID+body, uppercase hex.
func upstreamSign(secretKey, timestamp, requestID string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(timestamp))
	mac.Write([]byte(requestID))
	mac.Write(body)
	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}

func TestHMACResponseVerifier_RoundTrip(t *testing.T) {
	v := NewHMACResponseVerifier(zerolog.Nop())
	body := []byte(`{"REQUEST_ID":123456,"TOKEN_GUID":"a1b2c3"}`)
	sig := upstreamSign(testContext.SecretKey, "20251103170001", "123456", body)

	outcome := v.Verify(testContext, sig, "20251103170001", "123456", body)

	assert.True(t, outcome.Valid)
	assert.Equal(t, sig, outcome.ExpectedSignature)
	assert.Equal(t, sig, outcome.ReceivedSignature)
	assert.Regexp(t, `^[0-9A-F]{64}$`, outcome.ExpectedSignature)
}

func TestHMACResponseVerifier_TrimsTrailingNewline(t *testing.T) {
	// The upstream signs the body, then appends a newline before sending.
	// The wire form with the newline must still verify.
	v := NewHMACResponseVerifier(zerolog.Nop())
	body := []byte(`{"REQUEST_ID":7,"TOKEN_GUID":"x"}`)
	sig := upstreamSign(testContext.SecretKey, "20251103170002", "7", body)

	wire := append(append([]byte{}, body...), '\n')
	assert.True(t, v.Verify(testContext, sig, "20251103170002", "7", wire).Valid)

	wire = append(wire, "\r\n \t"...)
	assert.True(t, v.Verify(testContext, sig, "20251103170002", "7", wire).Valid)
}

func TestHMACResponseVerifier_FailsWithoutTrimming(t *testing.T) {
	// If the upstream-signed form already contained the newline, the trimmed
	// recomputation must not match.
	v := NewHMACResponseVerifier(zerolog.Nop())
	wire := []byte("{\"REQUEST_ID\":7,\"TOKEN_GUID\":\"x\"}\n")
	sig := upstreamSign(testContext.SecretKey, "20251103170002", "7", wire)

	assert.False(t, v.Verify(testContext, sig, "20251103170002", "7", wire).Valid)
}

func TestHMACResponseVerifier_PreservesLeadingAndInteriorWhitespace(t *testing.T) {
	v := NewHMACResponseVerifier(zerolog.Nop())
	body := []byte("  {\"REQUEST_ID\": 7,\n  \"TOKEN_GUID\": \"x\"}")
	sig := upstreamSign(testContext.SecretKey, "20251103170003", "7", body)

	assert.True(t, v.Verify(testContext, sig, "20251103170003", "7", body).Valid)
}

func TestHMACResponseVerifier_CaseInsensitiveComparison(t *testing.T) {
	v := NewHMACResponseVerifier(zerolog.Nop())
	body := []byte(`{"REQUEST_ID":9}`)
	sig := upstreamSign(testContext.SecretKey, "20251103170004", "9", body)

	for _, received := range []string{
		sig,
		strings.ToLower(sig),
		strings.ToUpper(sig[:32]) + strings.ToLower(sig[32:]),
	} {
		outcome := v.Verify(testContext, received, "20251103170004", "9", body)
		assert.True(t, outcome.Valid, "signature %q should verify", received)
		assert.Equal(t, received, outcome.ReceivedSignature)
	}
}

func TestHMACResponseVerifier_MismatchIsReportedNotFatal(t *testing.T) {
	v := NewHMACResponseVerifier(zerolog.Nop())
	body := []byte(`{"REQUEST_ID":9}`)
	sig := upstreamSign(testContext.SecretKey, "20251103170004", "9", body)

	// Corrupt one byte.
	corrupted := "0" + sig[1:]
	if corrupted == sig {
		corrupted = "1" + sig[1:]
	}

	outcome := v.Verify(testContext, corrupted, "20251103170004", "9", body)
	assert.False(t, outcome.Valid)
	assert.Equal(t, sig, outcome.ExpectedSignature)
	assert.Equal(t, corrupted, outcome.ReceivedSignature)
}

func TestHMACResponseVerifier_MessageOmitsMerchantID(t *testing.T) {
	// The response-side message differs from the request side: signing with
	// the merchant id appended must not verify.
	v := NewHMACResponseVerifier(zerolog.Nop())
	body := []byte(`{"REQUEST_ID":9}`)

	mac := hmac.New(sha256.New, []byte(testContext.SecretKey))
	mac.Write([]byte("20251103170004"))
	mac.Write([]byte("9"))
	mac.Write(body)
	mac.Write([]byte(testContext.MerchantID))
	withMerchant := strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))

	assert.False(t, v.Verify(testContext, withMerchant, "20251103170004", "9", body).Valid)
}

func TestHMACResponseVerifier_NeverLogsSecretKey(t *testing.T) {
	var buf bytes.Buffer
	v := NewHMACResponseVerifier(logger.NewWithWriter("debug", &buf))
	body := []byte(`{"REQUEST_ID":9}`)
	sig := upstreamSign(testContext.SecretKey, "20251103170004", "9", body)

	v.Verify(testContext, sig, "20251103170004", "9", body)

	assert.NotContains(t, buf.String(), testContext.SecretKey)
	assert.Contains(t, buf.String(), "expected_signature")
}
