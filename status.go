package airsync

import "fmt"

// Status describes the state of the sync subsystem. There is at most one
// active role per process: a session either sends or receives.
type Status uint32

const (
	// StatusOff means no remote connectivity, not listening, not sending.
	StatusOff Status = iota
	// StatusSendWaiting means listening for any sign of interest, but not
	// yet sending aircraft data.
	StatusSendWaiting
	// StatusSending means actively multicasting aircraft data.
	StatusSending
	// StatusRecvWaiting means waiting for data while periodically
	// beaconing interest.
	StatusRecvWaiting
	// StatusReceiving means actively processing inbound aircraft data.
	StatusReceiving
)

// String returns the status name for logging.
func (s Status) String() string {
	switch s {
	case StatusOff:
		return "Off"
	case StatusSendWaiting:
		return "SendWaiting"
	case StatusSending:
		return "Sending"
	case StatusRecvWaiting:
		return "RecvWaiting"
	case StatusReceiving:
		return "Receiving"
	}
	return fmt.Sprintf("Status(%d)", uint32(s))
}

// IsListener reports whether the status belongs to the receiver role.
func (s Status) IsListener() bool {
	return s == StatusRecvWaiting || s == StatusReceiving
}
