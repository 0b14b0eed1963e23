// Package ui implements the interactive submission form using bubbletea's Elm architecture.
//
// The TUI walks through three views:
//  1. [FormView] : pick a manuscript, edit the author/affiliation rows, add a title
//  2. [UploadView] : watch the upload progress bar and status lines
//  3. [ResultView] : see the server's answer or the retry notice
//
// Author rows are owned by an [authors.Editor]; each row's inputs are keyed by the row's stable ID so
// removing a row in the middle never shifts typed text between rows. Labels are read back from the
// [display.Buffer] the editor renders into.
//
// Upload events flow through the session's channel. A command blocks on the next event and is re-armed
// after every delivery, so the session itself is only touched from Update.
package ui
