package upstream

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// bodyCharset transcodes upstream response bodies from a legacy single-byte
// encoding to UTF-8. The raw bytes are still what gets verified; decoding
// only feeds the JSON parser, otherwise multi-byte characters in bank and
// country fields corrupt.
type bodyCharset struct {
	name string
	enc  encoding.Encoding // nil = body is already UTF-8
}

// charsetByName resolves a configured charset name. The supported set covers
// the encodings legacy tokenization backends are known to emit.
func charsetByName(name string) (*bodyCharset, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	cs := &bodyCharset{name: normalized}
	switch normalized {
	case "", "utf-8", "utf8":
		cs.name = "utf-8"
	case "windows-1254":
		cs.enc = charmap.Windows1254
	case "windows-1252":
		cs.enc = charmap.Windows1252
	case "iso-8859-9":
		cs.enc = charmap.ISO8859_9
	case "iso-8859-1":
		cs.enc = charmap.ISO8859_1
	default:
		return nil, fmt.Errorf("unsupported response charset %q", name)
	}
	return cs, nil
}

func (cs *bodyCharset) decode(raw []byte) (string, error) {
	if cs.enc == nil {
		return string(raw), nil
	}
	out, err := cs.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
