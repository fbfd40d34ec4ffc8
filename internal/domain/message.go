package domain

import (
	"strconv"
	"time"
)

// SystemDiscriminator keys messages that are not tied to a specific item.
const SystemDiscriminator int64 = 0

// MessageWindow is how long a message stays in the payload sent to the bridge.
const MessageWindow = 10 * time.Second

type MessageKey struct {
	At            time.Time
	Discriminator int64
}

// String renders the key as "<unix seconds>:<discriminator>", the form the
// bridge script uses to tell messages apart.
func (k MessageKey) String() string {
	seconds := float64(k.At.Unix()) + float64(k.At.Nanosecond())/float64(time.Second)
	return strconv.FormatFloat(seconds, 'f', -1, 64) + ":" + strconv.FormatInt(k.Discriminator, 10)
}

type PendingMessage struct {
	Key  MessageKey
	Text string
}

// VisibleAt reports whether the message is still inside the display window.
func (m PendingMessage) VisibleAt(now time.Time) bool {
	return now.Sub(m.Key.At) < MessageWindow
}
