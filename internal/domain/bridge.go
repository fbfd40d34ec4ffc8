package domain

import "time"

// BridgePayload is what the client pushes to the emulator script every cycle.
type BridgePayload struct {
	Items    []int64
	Messages []PendingMessage
	At       time.Time
}

// BridgeFrame is one decoded response line from the emulator script.
type BridgeFrame struct {
	KeepAlive bool
	Snapshot  Snapshot
}
