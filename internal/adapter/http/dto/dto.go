package dto

import "card-token-proxy/internal/core/domain"

// GenerateTokenRequest is the request body for POST /api/generate-token.
type GenerateTokenRequest struct {
	CardPan string `json:"cardPan" binding:"required,numeric,min=12,max=19"`
}

// GenerateTokenResponse is returned when the upstream call succeeded. A
// payload with SignatureVerified=false and VerificationSkipped=true arrived
// without signature material and must not be trusted without explicit
// caller acknowledgment.
type GenerateTokenResponse struct {
	Success             bool                `json:"success"`
	SignatureVerified   bool                `json:"signatureVerified"`
	VerificationSkipped bool                `json:"verificationSkipped,omitempty"`
	Token               domain.TokenPayload `json:"token"`
}

// SignatureMismatchResponse is returned (HTTP 200) when the upstream reply
// failed authentication. Both signatures are included for debugging.
type SignatureMismatchResponse struct {
	Success           bool                `json:"success"`
	SignatureVerified bool                `json:"signatureVerified"`
	Error             string              `json:"error"`
	ReceivedSignature string              `json:"receivedSignature"`
	ExpectedSignature string              `json:"expectedSignature"`
	ServerTimestamp   string              `json:"serverTimestamp"`
	TokenRequestID    string              `json:"tokenRequestId"`
	ResponseData      domain.TokenPayload `json:"responseData"`
}

// UpstreamErrorResponse surfaces a non-2xx upstream reply unchanged.
type UpstreamErrorResponse struct {
	Success        bool   `json:"success"`
	Error          string `json:"error"`
	UpstreamStatus int    `json:"upstreamStatus"`
	UpstreamBody   string `json:"upstreamBody,omitempty"`
}

// ConfigEcho is the non-secret configuration reported by GET /health.
type ConfigEcho struct {
	Endpoint                  string `json:"endpoint"`
	MerchantID                string `json:"merchantId"`
	APIVersion                string `json:"apiVersion"`
	ResponseCharset           string `json:"responseCharset"`
	NonceHexLength            int    `json:"nonceHexLength"`
	TimestampToleranceSeconds int    `json:"timestampToleranceSeconds"`
}
