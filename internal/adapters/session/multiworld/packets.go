package multiworld

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bnema/ff1c/internal/domain"
)

// Server packets arrive as a JSON array of objects tagged by "cmd".
type envelope struct {
	Cmd string `json:"cmd"`
}

type networkItem struct {
	Item     int64 `json:"item"`
	Location int64 `json:"location"`
	Player   int   `json:"player"`
	Flags    int   `json:"flags"`
}

func (n networkItem) toDomain() domain.Item {
	return domain.Item{Item: n.Item, Location: n.Location, Player: n.Player, Flags: n.Flags}
}

type networkPlayer struct {
	Team  int    `json:"team"`
	Slot  int    `json:"slot"`
	Alias string `json:"alias"`
	Name  string `json:"name"`
}

func (p networkPlayer) displayName() string {
	if p.Alias != "" {
		return p.Alias
	}
	return p.Name
}

type roomInfoPacket struct {
	Password bool     `json:"password"`
	Games    []string `json:"games"`
}

type connectedPacket struct {
	Team             int                 `json:"team"`
	Slot             int                 `json:"slot"`
	Players          []networkPlayer     `json:"players"`
	MissingLocations []domain.LocationID `json:"missing_locations"`
	CheckedLocations []domain.LocationID `json:"checked_locations"`
}

type connectionRefusedPacket struct {
	Errors []string `json:"errors"`
}

type roomUpdatePacket struct {
	Players          []networkPlayer     `json:"players"`
	CheckedLocations []domain.LocationID `json:"checked_locations"`
}

type receivedItemsPacket struct {
	Index int           `json:"index"`
	Items []networkItem `json:"items"`
}

type printPacket struct {
	Text string `json:"text"`
}

type textPart struct {
	Text string `json:"text"`
}

type printJSONPacket struct {
	Type      string      `json:"type"`
	Receiving int         `json:"receiving"`
	Item      networkItem `json:"item"`
	Data      []textPart  `json:"data"`
}

func (p printJSONPacket) text() string {
	var b strings.Builder
	for _, part := range p.Data {
		b.WriteString(part.Text)
	}
	return b.String()
}

// splitPackets breaks one websocket frame into its packets.
func splitPackets(frame []byte) ([]json.RawMessage, error) {
	var packets []json.RawMessage
	if err := json.Unmarshal(frame, &packets); err != nil {
		return nil, fmt.Errorf("decode server frame: %w", err)
	}

	return packets, nil
}

func packetCmd(raw json.RawMessage) (string, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("decode packet header: %w", err)
	}

	return env.Cmd, nil
}

func encodeCommands(commands []domain.Command) ([]byte, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return nil, fmt.Errorf("encode commands: %w", err)
	}

	return data, nil
}
