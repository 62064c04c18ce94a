package handler

import (
	"errors"
	"net/http"

	"card-token-proxy/internal/adapter/http/dto"
	"card-token-proxy/internal/core/domain"
	"card-token-proxy/internal/core/ports"
	"card-token-proxy/pkg/apperror"
	"card-token-proxy/pkg/response"

	"github.com/gin-gonic/gin"
)

// TokenHandler handles the tokenization endpoint.
type TokenHandler struct {
	tokenSvc ports.TokenizationService
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(tokenSvc ports.TokenizationService) *TokenHandler {
	return &TokenHandler{tokenSvc: tokenSvc}
}

// GenerateToken handles POST /api/generate-token. A verification mismatch is
// reported with HTTP 200 and success=false: it is a protocol-level outcome,
// not a transport failure.
func (h *TokenHandler) GenerateToken(c *gin.Context) {
	var req dto.GenerateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.tokenSvc.Tokenize(c.Request.Context(), req.CardPan)
	if err != nil {
		var upstreamErr *apperror.UpstreamError
		if errors.As(err, &upstreamErr) {
			// Surface the upstream status and body unchanged.
			c.JSON(upstreamErr.StatusCode, dto.UpstreamErrorResponse{
				Success:        false,
				Error:          "upstream tokenization service returned an error",
				UpstreamStatus: upstreamErr.StatusCode,
				UpstreamBody:   string(upstreamErr.Body),
			})
			return
		}
		var transportErr *apperror.TransportError
		if errors.As(err, &transportErr) {
			c.JSON(http.StatusBadGateway, dto.UpstreamErrorResponse{
				Success:        false,
				Error:          transportErr.Error(),
				UpstreamStatus: http.StatusBadGateway,
			})
			return
		}
		response.Error(c, err)
		return
	}

	switch result.State {
	case domain.VerificationFailed:
		c.JSON(http.StatusOK, dto.SignatureMismatchResponse{
			Success:           false,
			SignatureVerified: false,
			Error:             "response signature verification failed",
			ReceivedSignature: result.ReceivedSignature,
			ExpectedSignature: result.ExpectedSignature,
			ServerTimestamp:   result.ServerTimestamp,
			TokenRequestID:    result.RequestID,
			ResponseData:      result.Payload,
		})
	case domain.VerificationSkipped:
		c.JSON(http.StatusOK, dto.GenerateTokenResponse{
			Success:             true,
			SignatureVerified:   false,
			VerificationSkipped: true,
			Token:               result.Payload,
		})
	default:
		c.JSON(http.StatusOK, dto.GenerateTokenResponse{
			Success:           true,
			SignatureVerified: true,
			Token:             result.Payload,
		})
	}
}

// HealthCheck handles GET /health: liveness, the non-secret configuration
// echo, and dependency statuses.
func HealthCheck(echo dto.ConfigEcho, checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"config":       echo,
			"dependencies": deps,
		})
	}
}
