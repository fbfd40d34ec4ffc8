package domain

// Item is a multiworld item as reported by the server. Player is the slot
// whose world holds Location.
type Item struct {
	Item     int64
	Location int64
	Player   int
	Flags    int
}

type PrintJSONType string

const (
	PrintJSONHint     PrintJSONType = "Hint"
	PrintJSONItemSend PrintJSONType = "ItemSend"
)

// RemoteEvent is one inbound notice from the multiworld session. The set of
// variants is closed; consumers switch over the concrete types.
type RemoteEvent interface {
	remoteEvent()
}

type ConnectedEvent struct {
	Slot             int
	MissingLocations []LocationID
	CheckedLocations []LocationID
}

type PrintEvent struct {
	Text string
}

type ReceivedItemsEvent struct {
	Index int
	Items []Item
}

type PrintJSONEvent struct {
	Type      PrintJSONType
	Receiving int
	Item      Item
	Text      string
}

type UnknownEvent struct {
	Cmd string
}

func (ConnectedEvent) remoteEvent()     {}
func (PrintEvent) remoteEvent()         {}
func (ReceivedItemsEvent) remoteEvent() {}
func (PrintJSONEvent) remoteEvent()     {}
func (UnknownEvent) remoteEvent()       {}
