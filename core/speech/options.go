package speech

type ManagerOption func(*Manager)

// WithMode overrides the mode detected from the device.
func WithMode(mode Mode) ManagerOption {
	return func(m *Manager) {
		m.mode = mode
		m.modeForced = true
	}
}

// WithLanguage sets the recognition language passed to the device.
func WithLanguage(language string) ManagerOption {
	return func(m *Manager) {
		if language != "" {
			m.language = language
		}
	}
}

// WithRestartLimit ends the session after limit consecutive device restarts
// that produced no recognition result. Zero (the default) restarts
// indefinitely.
func WithRestartLimit(limit int) ManagerOption {
	return func(m *Manager) {
		if limit >= 0 {
			m.restartLimit = limit
		}
	}
}

// Callback options add to the callbacks registered before them. Every
// registered callback is called, in registration order.

// WithTranscriptCallback registers a callback for live transcript updates.
func WithTranscriptCallback(callback func(transcript string)) ManagerOption {
	return func(m *Manager) {
		if callback == nil {
			return
		}
		previous := m.onTranscript
		m.onTranscript = func(transcript string) {
			previous(transcript)
			callback(transcript)
		}
	}
}

// WithListeningCallback registers a callback for listening state changes.
// Device restarts do not change the listening state.
func WithListeningCallback(callback func(isListening bool)) ManagerOption {
	return func(m *Manager) {
		if callback == nil {
			return
		}
		previous := m.onListening
		m.onListening = func(isListening bool) {
			previous(isListening)
			callback(isListening)
		}
	}
}

// WithEndedCallback registers a callback for sessions that ended because the
// device ended on its own. The transcript is never submitted automatically.
func WithEndedCallback(callback func(transcript string)) ManagerOption {
	return func(m *Manager) {
		if callback == nil {
			return
		}
		previous := m.onEnded
		m.onEnded = func(transcript string) {
			previous(transcript)
			callback(transcript)
		}
	}
}

// WithErrorCallback registers a callback for unrecoverable device errors.
func WithErrorCallback(callback func(err error)) ManagerOption {
	return func(m *Manager) {
		if callback == nil {
			return
		}
		previous := m.onError
		m.onError = func(err error) {
			previous(err)
			callback(err)
		}
	}
}
