package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bnema/ff1c/internal/domain"
)

var keepAliveLine = []byte("\n")

type wirePayload struct {
	Items    []int64           `json:"items"`
	Messages map[string]string `json:"messages"`
}

// EncodePayload renders p as a single JSON line terminated by one newline.
// Messages outside the display window at p.At are left out.
func EncodePayload(p domain.BridgePayload) ([]byte, error) {
	wire := wirePayload{
		Items:    p.Items,
		Messages: make(map[string]string, len(p.Messages)),
	}
	if wire.Items == nil {
		wire.Items = []int64{}
	}
	for _, msg := range p.Messages {
		if msg.VisibleAt(p.At) {
			wire.Messages[msg.Key.String()] = msg.Text
		}
	}

	data, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("encode bridge payload: %w", err)
	}

	return append(data, '\n'), nil
}

// DecodeLine parses one response line. A bare newline is a keep-alive;
// anything else must be a JSON array of at least domain.SnapshotMinLength ints.
func DecodeLine(line []byte) (domain.BridgeFrame, error) {
	if bytes.Equal(line, keepAliveLine) {
		return domain.BridgeFrame{KeepAlive: true}, nil
	}

	var values []int
	if err := json.Unmarshal(bytes.TrimRight(line, "\r\n"), &values); err != nil {
		return domain.BridgeFrame{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if len(values) < domain.SnapshotMinLength {
		return domain.BridgeFrame{}, fmt.Errorf("%w: got %d values, want at least %d",
			ErrShortSnapshot, len(values), domain.SnapshotMinLength)
	}

	return domain.BridgeFrame{Snapshot: values}, nil
}
