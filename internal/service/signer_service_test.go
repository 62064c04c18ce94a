package service

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"card-token-proxy/internal/core/domain"
	"card-token-proxy/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testContext = domain.SigningContext{
	SecretKey:  "Password123",
	MerchantID: "9201",
}

func TestHMACRequestSigner_GoldenSignature(t *testing.T) {
	// Fixed clock and entropy pin the full triple; the signature value is a
	// regression anchor for the message construction order.
	nonceRaw, err := hex.DecodeString("abc123abc123abc123abc123abc123ab")
	require.NoError(t, err)

	s := NewHMACRequestSigner(16, zerolog.Nop())
	s.now = func() time.Time { return time.Date(2025, 11, 3, 17, 0, 0, 0, time.UTC) }
	s.entropy = bytes.NewReader(nonceRaw)

	sig, err := s.Sign(testContext)
	require.NoError(t, err)

	assert.Equal(t, "20251103170000", sig.Timestamp)
	assert.Equal(t, "abc123abc123abc123abc123abc123ab", sig.Nonce)
	assert.Equal(t, "4bd2bf2b8a4dda665ce03cafd4fd8c99fa463cf11bc3587aaf89aef3da87ca9e", sig.Signature)
}

func TestHMACRequestSigner_TimestampIsUTC(t *testing.T) {
	// 17:00 at UTC+3 must be rendered as 14:00 UTC.
	loc := time.FixedZone("UTC+3", 3*60*60)

	s := NewHMACRequestSigner(16, zerolog.Nop())
	s.now = func() time.Time { return time.Date(2025, 11, 3, 17, 0, 0, 0, loc) }

	sig, err := s.Sign(testContext)
	require.NoError(t, err)
	assert.Equal(t, "20251103140000", sig.Timestamp)
}

func TestHMACRequestSigner_DistinctNoncesPerCall(t *testing.T) {
	s := NewHMACRequestSigner(16, zerolog.Nop())

	first, err := s.Sign(testContext)
	require.NoError(t, err)
	second, err := s.Sign(testContext)
	require.NoError(t, err)

	assert.Regexp(t, `^[0-9a-f]{32}$`, first.Nonce)
	assert.Regexp(t, `^[0-9a-f]{64}$`, first.Signature)
	assert.NotEqual(t, first.Nonce, second.Nonce, "nonces are single use")
	assert.NotEqual(t, first.Signature, second.Signature)
}

func TestHMACRequestSigner_ConfigurableNonceLength(t *testing.T) {
	s := NewHMACRequestSigner(32, zerolog.Nop())

	sig, err := s.Sign(testContext)
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{64}$`, sig.Nonce)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy exhausted")
}

func TestHMACRequestSigner_EntropyFailureIsFatal(t *testing.T) {
	s := NewHMACRequestSigner(16, zerolog.Nop())
	s.entropy = failingReader{}

	_, err := s.Sign(testContext)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entropy")
}

func TestHMACRequestSigner_NeverLogsSecretKey(t *testing.T) {
	var buf bytes.Buffer
	s := NewHMACRequestSigner(16, logger.NewWithWriter("debug", &buf))

	_, err := s.Sign(testContext)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, buf.String(), testContext.SecretKey)
	assert.Contains(t, entry, "nonce")
	assert.Contains(t, entry, "signature")
}
