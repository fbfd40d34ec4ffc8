package domain

import "time"

type ConnectionState string

const (
	ConnectionDisconnected         ConnectionState = "disconnected"
	ConnectionTentativelyConnected ConnectionState = "tentatively_connected"
	ConnectionConnected            ConnectionState = "connected"
	ConnectionErrorTimingOut       ConnectionState = "error_timing_out"
	ConnectionErrorRefused         ConnectionState = "error_refused"
	ConnectionErrorReset           ConnectionState = "error_reset"
)

const (
	StatusInitialText    = "Connection has not been initiated"
	StatusTentativeText  = "Initial Connection Made"
	StatusConnectedText  = "Connected"
	StatusTimingOutText  = "Connection timing out. Please restart your emulator then restart ff1_connector.lua"
	StatusRefusedText    = "Connection Refused. Please start your emulator make sure ff1_connector.lua is running"
	StatusResetText      = "Connection was reset. Please restart your emulator then restart ff1_connector.lua"
	StatusStoppedText    = "Client stopped"
	tentativeFailureText = "Was tentatively connected but error occurred: "
)

func (s ConnectionState) IsError() bool {
	switch s {
	case ConnectionErrorTimingOut, ConnectionErrorRefused, ConnectionErrorReset:
		return true
	default:
		return false
	}
}

func (s ConnectionState) Valid() bool {
	switch s {
	case ConnectionDisconnected, ConnectionTentativelyConnected, ConnectionConnected:
		return true
	default:
		return s.IsError()
	}
}

// Text returns the operator-facing status line for a state.
func (s ConnectionState) Text() string {
	switch s {
	case ConnectionTentativelyConnected:
		return StatusTentativeText
	case ConnectionConnected:
		return StatusConnectedText
	case ConnectionErrorTimingOut:
		return StatusTimingOutText
	case ConnectionErrorRefused:
		return StatusRefusedText
	case ConnectionErrorReset:
		return StatusResetText
	default:
		return StatusInitialText
	}
}

// BridgeStatus is the observable state of the local bridge connection.
type BridgeStatus struct {
	State     ConnectionState
	Text      string
	Tentative bool
	UpdatedAt time.Time
}

func NewBridgeStatus(state ConnectionState, at time.Time) BridgeStatus {
	return BridgeStatus{State: state, Text: state.Text(), UpdatedAt: at}
}

// TentativeFailure is the status recorded when the first round-trip after a
// connect fails, keeping the underlying error state.
func TentativeFailure(state ConnectionState, at time.Time) BridgeStatus {
	return BridgeStatus{
		State:     state,
		Text:      tentativeFailureText + state.Text(),
		Tentative: true,
		UpdatedAt: at,
	}
}

func (s BridgeStatus) IsStale(now time.Time, after time.Duration) bool {
	if s.UpdatedAt.IsZero() || after <= 0 {
		return false
	}

	return now.Sub(s.UpdatedAt) > after
}
