package vanishstream

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/nostrtools/eventdeleter/pkg/model"
)

// ErrMissingPubkey is returned when a stream entry carries no pubkey field
// (§4.6.3).
var ErrMissingPubkey = errors.New("vanishstream: entry missing pubkey")

// ErrNotVanishKind is returned when a stream entry carries a kind field
// whose value is not 62.
var ErrNotVanishKind = errors.New("vanishstream: entry kind is not a vanish request")

// StreamEntry is one raw Redis stream entry: an id plus its field map, as
// XREAD returns it.
type StreamEntry struct {
	ID     string
	Fields map[string]any
}

// ParseVanish maps a raw stream entry to a DeleteRequest::Vanish. pubkey is
// required; kind, if present, must be 62; content, if present, becomes the
// reason. All other fields are ignored.
func ParseVanish(entry StreamEntry) (model.DeleteRequest, error) {
	pubkey, ok := entry.Fields["pubkey"]
	if !ok {
		return model.DeleteRequest{}, ErrMissingPubkey
	}
	pubkeyStr, ok := pubkey.(string)
	if !ok || pubkeyStr == "" {
		return model.DeleteRequest{}, ErrMissingPubkey
	}

	if rawKind, ok := entry.Fields["kind"]; ok {
		kind, err := toInt(rawKind)
		if err != nil {
			return model.DeleteRequest{}, fmt.Errorf("%w: kind field is not an integer: %v", ErrNotVanishKind, rawKind)
		}
		if kind != model.KindVanishRequest {
			return model.DeleteRequest{}, fmt.Errorf("%w: kind=%d", ErrNotVanishKind, kind)
		}
	}

	var reason *string
	if rawContent, ok := entry.Fields["content"]; ok {
		if content, ok := rawContent.(string); ok && content != "" {
			reason = &content
		}
	}

	return model.Vanish(entry.ID, pubkeyStr, reason), nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case string:
		return strconv.Atoi(n)
	default:
		return 0, fmt.Errorf("unsupported kind type %T", v)
	}
}
