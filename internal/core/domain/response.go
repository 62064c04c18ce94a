package domain

import "encoding/json"

// Upstream payload field names.
const (
	PayloadFieldRequestID = "REQUEST_ID"
	PayloadFieldTokenGUID = "TOKEN_GUID"
)

// TokenPayload is the parsed upstream JSON body. Numeric fields are decoded
// as json.Number so they keep their exact wire text.
type TokenPayload map[string]any

// RequestIDText returns the canonical textual form of the REQUEST_ID field,
// or "" when the field is absent. The field is numeric in the payload
// schema, but its signed form is the literal text as it appears on the wire.
func (p TokenPayload) RequestIDText() string {
	switch v := p[PayloadFieldRequestID].(type) {
	case json.Number:
		return v.String()
	case string:
		return v
	default:
		return ""
	}
}

// TokenGUID returns the token identifier, or "" when absent.
func (p TokenPayload) TokenGUID() string {
	s, _ := p[PayloadFieldTokenGUID].(string)
	return s
}

// RemoteResponse is one upstream reply kept in wire form. RawBody is the
// exact byte sequence received: signature verification must run over these
// bytes, never over a re-serialized form of Payload (re-serialization can
// reorder keys or change whitespace and break the signature).
type RemoteResponse struct {
	StatusCode int
	RawBody    []byte
	Timestamp  string // response timestamp header, "" if absent
	Signature  string // response signature header, "" if absent
	Payload    TokenPayload
	RequestID  string // canonical REQUEST_ID text, "" if absent
}
