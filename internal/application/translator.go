package application

import (
	"fmt"
	"strings"

	"github.com/bnema/ff1c/internal/domain"
	"github.com/bnema/ff1c/internal/logging"
	"github.com/bnema/ff1c/internal/ports"
)

// commandEchoMarker appears in server prints that echo a player's "!command".
const commandEchoMarker = ": !"

// Translator turns remote session events into display messages for the bridge.
type Translator struct {
	names       ports.NameTable
	players     ports.PlayerDirectory
	store       *MessageStore
	onConnected func()
	logger      *logging.Logger
}

type TranslatorOption func(*Translator)

// WithConnectedHook registers a callback run when the session (re)binds to a slot.
func WithConnectedHook(hook func()) TranslatorOption {
	return func(t *Translator) {
		t.onConnected = hook
	}
}

func WithTranslatorLogger(logger *logging.Logger) TranslatorOption {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

func NewTranslator(names ports.NameTable, players ports.PlayerDirectory, store *MessageStore, opts ...TranslatorOption) *Translator {
	t := &Translator{
		names:   names,
		players: players,
		store:   store,
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Handle translates ev and stores the resulting message, if any.
func (t *Translator) Handle(ev domain.RemoteEvent) {
	text, discriminator, ok := t.Translate(ev)
	if !ok {
		return
	}

	msg := t.store.Add(text, discriminator)
	t.logger.Info(text, "key", msg.Key.String())
}

// Translate returns the message text and its discriminator for ev. ok is
// false when the event produces no message.
func (t *Translator) Translate(ev domain.RemoteEvent) (text string, discriminator int64, ok bool) {
	switch ev := ev.(type) {
	case domain.ConnectedEvent:
		if t.onConnected != nil {
			t.onConnected()
		}
		return "", 0, false
	case domain.PrintEvent:
		if strings.Contains(ev.Text, commandEchoMarker) {
			return "", 0, false
		}
		return ev.Text, domain.SystemDiscriminator, true
	case domain.ReceivedItemsEvent:
		// An empty batch would only put a bare "Received " on screen.
		if len(ev.Items) == 0 {
			return "", 0, false
		}
		names := make([]string, 0, len(ev.Items))
		for _, item := range ev.Items {
			names = append(names, t.names.ItemName(item.Item))
		}
		return "Received " + strings.Join(names, ", "), domain.SystemDiscriminator, true
	case domain.PrintJSONEvent:
		return t.translatePrintJSON(ev)
	case domain.UnknownEvent:
		return "", 0, false
	default:
		panic(fmt.Sprintf("unhandled remote event %T", ev))
	}
}

func (t *Translator) translatePrintJSON(ev domain.PrintJSONEvent) (string, int64, bool) {
	item := ev.Item
	itemName := t.names.ItemName(item.Item)

	switch ev.Type {
	case domain.PrintJSONHint:
		text := fmt.Sprintf("Hint: Your %s is at %s's %s",
			itemName, t.players.PlayerName(item.Player), t.names.LocationName(item.Location))
		return text, item.Item, true
	case domain.PrintJSONItemSend:
		self := t.players.Slot()
		if ev.Receiving == self {
			return "", 0, false
		}
		return itemSendText(self, item.Player, ev.Receiving, itemName, t.players), item.Item, true
	default:
		return "", 0, false
	}
}

// itemSendText describes who found an item and who it went to.
func itemSendText(self, sender, receiver int, itemName string, players ports.PlayerDirectory) string {
	switch {
	case sender == self && receiver == self:
		return fmt.Sprintf("You found your own %s", itemName)
	case sender == self:
		return fmt.Sprintf("You sent %s to %s", itemName, players.PlayerName(receiver))
	case sender == receiver:
		return fmt.Sprintf("%s found their %s", players.PlayerName(sender), itemName)
	default:
		return fmt.Sprintf("%s sent %s to %s", players.PlayerName(sender), itemName, players.PlayerName(receiver))
	}
}
