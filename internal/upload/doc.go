// Package upload sends a selected manuscript file to the submission endpoint and reports progress.
//
// # Session lifecycle
//
// A [Session] wraps exactly one [File] and moves through
//
//	Idle → InFlight → Completed | Failed
//
// [New] rejects a nil file with [shared.ErrInvalidInput]. [Session.Start] only succeeds from Idle,
// so a session cannot be restarted or reused once it reaches a terminal state.
//
// # Event delivery
//
// Start returns as soon as the request goroutine is launched. The goroutine streams a multipart body
// (a "file" part plus upload_file=true) and publishes [Event] values on [Session.Events] in the order the
// transport produces them: progress events with non-decreasing byte counts followed by exactly one
// success or failure event, after which the channel is closed.
//
// The goroutine never touches session state. The owner of the session (a bubbletea model, or
// [Session.Run] for scripted callers) feeds each event back through [Session.Dispatch], so state
// transitions and display updates happen on the owner's loop only.
//
// Progress events are throttled with a token bucket from golang.org/x/time/rate; the final byte count
// is always reported. Failures are not retried; the display receives one notice asking the user to
// reload and try again.
package upload
