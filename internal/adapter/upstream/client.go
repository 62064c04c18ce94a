package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"card-token-proxy/internal/core/domain"
	"card-token-proxy/pkg/apperror"

	"github.com/rs/zerolog"
)

// Header and query parameter names fixed by the remote tokenization API.
// The merchant id is part of the signed message but travels as a query
// parameter, while the timestamp and signature travel as headers. That
// asymmetry is part of the remote contract.
const (
	HeaderTimestamp = "X-Timestamp"
	HeaderSignature = "X-Signature"

	paramPAN     = "pan"
	paramSiteID  = "siteid"
	paramVersion = "version"
	paramNonce   = "nonce"
	paramFormat  = "format"

	responseFormat = "json"
)

// Config holds the upstream endpoint settings.
type Config struct {
	Endpoint        string
	MerchantID      string
	APIVersion      string
	ResponseCharset string
	Timeout         time.Duration
}

// Client calls the remote tokenization endpoint over HTTP. It keeps the
// response in wire form for verification and decodes the legacy single-byte
// body encoding before JSON parsing.
type Client struct {
	endpoint   string
	merchantID string
	apiVersion string
	charset    *bodyCharset
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a Client. cfg.ResponseCharset names the legacy encoding
// of upstream response bodies (e.g. "windows-1254"); "utf-8" disables
// transcoding.
func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	cs, err := charsetByName(cfg.ResponseCharset)
	if err != nil {
		return nil, err
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		merchantID: cfg.MerchantID,
		apiVersion: cfg.APIVersion,
		charset:    cs,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}, nil
}

// RequestToken issues the signed GET to the remote tokenization endpoint.
// The returned RemoteResponse keeps the exact body bytes alongside the
// parsed payload.
func (c *Client) RequestToken(ctx context.Context, pan string, sig domain.RequestSignature) (*domain.RemoteResponse, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint URL: %w", err)
	}
	q := u.Query()
	q.Set(paramPAN, pan)
	q.Set(paramSiteID, c.merchantID)
	q.Set(paramVersion, c.apiVersion)
	q.Set(paramNonce, sig.Nonce)
	q.Set(paramFormat, responseFormat)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set(HeaderTimestamp, sig.Timestamp)
	req.Header.Set(HeaderSignature, sig.Signature)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &apperror.TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperror.TransportError{Err: fmt.Errorf("reading response body: %w", err)}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.log.Warn().Int("status", resp.StatusCode).Msg("upstream returned non-2xx")
		return nil, &apperror.UpstreamError{StatusCode: resp.StatusCode, Body: raw}
	}

	decoded, err := c.charset.decode(raw)
	if err != nil {
		return nil, apperror.ErrMalformedUpstreamPayload(fmt.Errorf("decoding %s body: %w", c.charset.name, err))
	}

	payload, err := parsePayload(decoded)
	if err != nil {
		return nil, apperror.ErrMalformedUpstreamPayload(err)
	}

	remote := &domain.RemoteResponse{
		StatusCode: resp.StatusCode,
		RawBody:    raw,
		Timestamp:  resp.Header.Get(HeaderTimestamp),
		Signature:  resp.Header.Get(HeaderSignature),
		Payload:    payload,
		RequestID:  payload.RequestIDText(),
	}

	c.log.Debug().
		Int("status", resp.StatusCode).
		Str("request_id", remote.RequestID).
		Bool("has_signature", remote.Signature != "").
		Msg("upstream response received")

	return remote, nil
}

// parsePayload decodes the upstream JSON body. Numbers stay as json.Number
// so the request-id field keeps its canonical wire text.
func parsePayload(body string) (domain.TokenPayload, error) {
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var payload domain.TokenPayload
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("parsing payload: %w", err)
	}
	return payload, nil
}
