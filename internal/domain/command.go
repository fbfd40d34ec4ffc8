package domain

// ClientStatus values understood by the multiworld server.
type ClientStatus int

const ClientStatusGoal ClientStatus = 30

const GameName = "Final Fantasy"

// ItemsHandlingAll asks the server to send items from every world, including
// this player's own and starting inventory.
const ItemsHandlingAll = 0b111

// Command is an outbound message for the multiworld session. Implementations
// carry their own "cmd" tag so they can be marshalled as-is.
type Command interface {
	CommandName() string
}

type LocationChecksCommand struct {
	Cmd       string       `json:"cmd"`
	Locations []LocationID `json:"locations"`
}

type StatusUpdateCommand struct {
	Cmd    string       `json:"cmd"`
	Status ClientStatus `json:"status"`
}

type Version struct {
	Major int    `json:"major"`
	Minor int    `json:"minor"`
	Build int    `json:"build"`
	Class string `json:"class"`
}

type ConnectCommand struct {
	Cmd           string   `json:"cmd"`
	Password      string   `json:"password"`
	Name          string   `json:"name"`
	Version       Version  `json:"version"`
	Tags          []string `json:"tags"`
	UUID          string   `json:"uuid"`
	Game          string   `json:"game"`
	ItemsHandling int      `json:"items_handling"`
}

type SayCommand struct {
	Cmd  string `json:"cmd"`
	Text string `json:"text"`
}

type SyncCommand struct {
	Cmd string `json:"cmd"`
}

func NewLocationChecks(locations []LocationID) LocationChecksCommand {
	return LocationChecksCommand{Cmd: "LocationChecks", Locations: locations}
}

func NewGoalStatusUpdate() StatusUpdateCommand {
	return StatusUpdateCommand{Cmd: "StatusUpdate", Status: ClientStatusGoal}
}

func NewConnect(name, password, uuid string, version Version) ConnectCommand {
	return ConnectCommand{
		Cmd:           "Connect",
		Password:      password,
		Name:          name,
		Version:       version,
		Tags:          []string{},
		UUID:          uuid,
		Game:          GameName,
		ItemsHandling: ItemsHandlingAll,
	}
}

func NewSay(text string) SayCommand {
	return SayCommand{Cmd: "Say", Text: text}
}

func NewSync() SyncCommand {
	return SyncCommand{Cmd: "Sync"}
}

func (c LocationChecksCommand) CommandName() string { return c.Cmd }
func (c StatusUpdateCommand) CommandName() string   { return c.Cmd }
func (c ConnectCommand) CommandName() string        { return c.Cmd }
func (c SayCommand) CommandName() string            { return c.Cmd }
func (c SyncCommand) CommandName() string           { return c.Cmd }
