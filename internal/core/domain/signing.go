package domain

// SigningContext carries the shared secret and merchant identity used for
// request signing and response verification. It is loaded once at startup,
// immutable for the process lifetime, and never transmitted or logged.
type SigningContext struct {
	SecretKey  string
	MerchantID string
}

// RequestSignature is the authentication triple attached to a single
// outbound tokenization call. Each triple is single-use: reusing a nonce is
// a replay defect.
type RequestSignature struct {
	Timestamp string // UTC instant, 14 digits, YYYYMMDDHHmmss
	Nonce     string // lowercase hex from a cryptographically secure source
	Signature string // HMAC over timestamp+nonce+merchantID, lowercase hex
}

// VerificationOutcome is the result of recomputing an upstream response
// signature. A mismatch is a normal, reportable outcome; both signatures are
// carried for diagnostics.
type VerificationOutcome struct {
	Valid             bool
	ExpectedSignature string // uppercase hex
	ReceivedSignature string // as received from the upstream header
}

// VerificationState classifies how a tokenization response was
// authenticated.
type VerificationState string

const (
	// VerificationValid: signature recomputed and matched.
	VerificationValid VerificationState = "valid"
	// VerificationFailed: signature recomputed and did not match.
	VerificationFailed VerificationState = "failed"
	// VerificationSkipped: the response lacked a signature header, a
	// timestamp header, or the request-id field. The payload is
	// unauthenticated, which is distinct from having failed verification.
	VerificationSkipped VerificationState = "skipped"
)
