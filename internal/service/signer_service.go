package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"card-token-proxy/internal/core/domain"

	"github.com/rs/zerolog"
)

// signTimestampLayout renders a UTC instant as 14 fixed-width decimal
// digits, YYYYMMDDHHmmss, no separators.
const signTimestampLayout = "20060102150405"

// HMACRequestSigner builds the (timestamp, nonce, signature) triple attached
// to every outbound tokenization call. The signed message is the
// delimiter-free concatenation timestamp+nonce+merchantID; its order is part
// of the remote contract.
type HMACRequestSigner struct {
	nonceBytes int
	now        func() time.Time
	entropy    io.Reader
	log        zerolog.Logger
}

// NewHMACRequestSigner creates a signer drawing nonceBytes of entropy from
// crypto/rand per request. The nonce is rendered as 2*nonceBytes lowercase
// hex characters; the length must match what the remote service expects.
func NewHMACRequestSigner(nonceBytes int, log zerolog.Logger) *HMACRequestSigner {
	return &HMACRequestSigner{
		nonceBytes: nonceBytes,
		now:        time.Now,
		entropy:    rand.Reader,
		log:        log,
	}
}

// Sign produces a fresh authentication triple. An entropy failure is
// returned as an error; there is no fallback to a weaker source.
func (s *HMACRequestSigner) Sign(sc domain.SigningContext) (domain.RequestSignature, error) {
	// UTC is part of the contract: a local-time timestamp drifts out of the
	// remote tolerance window and every request gets rejected upstream.
	timestamp := s.now().UTC().Format(signTimestampLayout)

	buf := make([]byte, s.nonceBytes)
	if _, err := io.ReadFull(s.entropy, buf); err != nil {
		return domain.RequestSignature{}, fmt.Errorf("reading nonce entropy: %w", err)
	}
	nonce := hex.EncodeToString(buf)

	mac := hmac.New(sha256.New, []byte(sc.SecretKey))
	mac.Write([]byte(timestamp))
	mac.Write([]byte(nonce))
	mac.Write([]byte(sc.MerchantID))
	signature := hex.EncodeToString(mac.Sum(nil))

	s.log.Debug().
		Str("timestamp", timestamp).
		Str("nonce", nonce).
		Str("signature", signature).
		Msg("request signed")

	return domain.RequestSignature{
		Timestamp: timestamp,
		Nonce:     nonce,
		Signature: signature,
	}, nil
}
