package speech

import "github.com/koscakluka/kuber-voice/core/speechtotext"

// Mode selects how the manager reacts to a capture device ending on its own.
type Mode int

const (
	// TerminateOnTimeout treats a device-initiated end as the end of the
	// session.
	TerminateOnTimeout Mode = iota
	// RestartOnTimeout keeps the session alive across device-initiated ends
	// by restarting the device and carrying the transcript forward. Used for
	// devices that silently cut off after a fixed duration while the user is
	// still speaking.
	RestartOnTimeout
)

func (m Mode) String() string {
	switch m {
	case TerminateOnTimeout:
		return "terminate_on_timeout"
	case RestartOnTimeout:
		return "restart_on_timeout"
	default:
		return "unknown"
	}
}

// ParseMode maps a configuration value to a mode. "auto" and "" report
// ok == false so the caller falls back to [DetectMode].
func ParseMode(value string) (mode Mode, ok bool) {
	switch value {
	case "restart", RestartOnTimeout.String():
		return RestartOnTimeout, true
	case "terminate", TerminateOnTimeout.String():
		return TerminateOnTimeout, true
	}
	return TerminateOnTimeout, false
}

// DetectMode picks the mode for device from its reported capabilities.
func DetectMode(device speechtotext.Device) Mode {
	if reporter, ok := device.(speechtotext.TimeoutReporter); ok && reporter.EndsOnTimeout() {
		return RestartOnTimeout
	}
	return TerminateOnTimeout
}

// Status is the lifecycle state of the speech session.
type Status int

const (
	StatusIdle Status = iota
	StatusListening
	StatusStopping
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusListening:
		return "listening"
	case StatusStopping:
		return "stopping"
	default:
		return "unknown"
	}
}
