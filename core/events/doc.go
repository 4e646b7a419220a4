// Package events defines the typed events the orchestrator delivers to
// presentation layers.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - conversation.*
//   - speech_input.*
//   - assistant_playback.*
//
// Semantics used across the package:
//
//   - Appended: immutable item added to an append-only sequence.
//   - Changed: boolean state flipped; carries the new value.
//   - Updated: mutable point-in-time snapshot that can change over time.
//
// conversation events
//
//   - TurnAppended (conversation.turn_appended): a turn was appended to the
//     history. Carries a copy of the turn.
//   - RequestPendingChanged (conversation.request_pending_changed): a backend
//     request started or finished.
//
// speech_input events
//
//   - ListeningChanged (speech_input.listening_changed): a capture session
//     started or ended. Device restarts inside a session are not reported.
//   - TranscriptUpdated (speech_input.transcript_updated): mutable live
//     transcript snapshot for the current session.
//   - SpeechEnded (speech_input.ended): the capture device ended the session
//     on its own; the transcript is left as a draft and never submitted.
//   - SpeechFailed (speech_input.failed): the capture session failed.
//   - SpeechUnavailable (speech_input.unavailable): voice input was requested
//     but no capture device exists.
//
// assistant_playback events
//
//   - AssistantPlaybackStarted (assistant_playback.started): a model turn
//     started playing.
//   - AssistantPlaybackEnded (assistant_playback.ended): playback of a model
//     turn finished or was interrupted.
//   - AssistantPlaybackFailed (assistant_playback.failed): playback of a model
//     turn failed.
package events
