package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/msx/internal/display"
	"github.com/desertthunder/msx/internal/shared"
	"golang.org/x/time/rate"
)

const (
	FileField      = "file"
	FlagField      = "upload_file"
	DefaultPath    = "/upload"
	DefaultTimeout = 60 * time.Second

	MessageTarget  = "manuscript"
	FilenameTarget = "filename"
	RetryMessage   = "There was an error, please reload and try again."
	NoFileText     = "No File Selected"

	defaultProgressHz = 10
	eventBuffer       = 64
)

// State is the lifecycle position of a [Session].
type State int

const (
	Uninitialized State = iota
	Idle
	InFlight
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case InFlight:
		return "in-flight"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == Completed || s == Failed
}

// EventKind enumerates transport events.
type EventKind int

const (
	EventProgress EventKind = iota
	EventSuccess
	EventFailure
)

// Event is one transport notification delivered on [Session.Events].
type Event struct {
	Kind     EventKind
	Loaded   int64
	Total    int64
	Response *Response
	Err      error
}

// Options configures a [Session].
type Options struct {
	Client     *Client
	Path       string
	Timeout    time.Duration
	Surface    display.Surface
	Logger     *log.Logger
	ProgressHz float64
	Fields     map[string][]string // extra form fields sent after the file part
}

// Session is one upload attempt of one file.
type Session struct {
	file     *File
	opts     Options
	state    State
	fraction float64
	percent  int64
	events   chan Event
	response *Response
	err      error
}

// New creates an idle session for file.
func New(file *File, opts Options) (*Session, error) {
	if file == nil {
		return nil, fmt.Errorf("%w: no file selected", shared.ErrInvalidInput)
	}

	if opts.Client == nil {
		opts.Client = NewClient("", nil)
	}
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Surface == nil {
		opts.Surface = display.Discard{}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	if opts.ProgressHz <= 0 {
		opts.ProgressHz = defaultProgressHz
	}

	return &Session{
		file:   file,
		opts:   opts,
		state:  Idle,
		events: make(chan Event, eventBuffer),
	}, nil
}

// File returns the file owned by the session.
func (s *Session) File() *File { return s.file }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Progress returns the fraction of the file sent so far, in [0, 1].
func (s *Session) Progress() float64 { return s.fraction }

// Response returns the server response once the session is terminal.
//
// A failed session has a response only when the server answered with a non-2xx status.
func (s *Session) Response() *Response { return s.response }

// Err returns the transport error once the session failed.
func (s *Session) Err() error { return s.err }

// Events returns the channel transport events are delivered on.
func (s *Session) Events() <-chan Event { return s.events }

// Start launches the upload request and returns immediately.
func (s *Session) Start(ctx context.Context) error {
	if s.state != Idle {
		return fmt.Errorf("%w: cannot start upload in state %s", shared.ErrInvalidState, s.state)
	}

	s.state = InFlight
	s.opts.Logger.Info("upload started", "file", s.file.Name, "size", s.file.Size, "path", s.opts.Path)

	go s.transfer(ctx)
	return nil
}

// Run starts the upload and dispatches every event until the session is terminal.
func (s *Session) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}

	for ev := range s.events {
		if err := s.Dispatch(ev); err != nil {
			return err
		}
	}

	if s.state == Failed {
		return s.err
	}
	return nil
}

// Dispatch applies a transport event to the session.
func (s *Session) Dispatch(ev Event) error {
	switch ev.Kind {
	case EventProgress:
		return s.OnProgress(ev.Loaded, ev.Total)
	case EventSuccess:
		s.response = ev.Response
		return s.OnSuccess()
	case EventFailure:
		if ev.Response != nil {
			s.response = ev.Response
		}
		return s.OnError(ev.Err)
	default:
		return fmt.Errorf("%w: unknown event kind %d", shared.ErrInvalidArgument, ev.Kind)
	}
}

// OnProgress records loaded/total bytes and shows the percentage.
//
// The recorded fraction never decreases. Unknown totals are ignored.
func (s *Session) OnProgress(loaded, total int64) error {
	if s.state != InFlight {
		return fmt.Errorf("%w: progress in state %s", shared.ErrInvalidState, s.state)
	}
	if total <= 0 {
		return nil
	}

	loaded = min(max(loaded, 0), total)
	if f := float64(loaded) / float64(total); f > s.fraction {
		s.fraction = f
	}
	if pct := (loaded*100 + total - 1) / total; pct > s.percent {
		s.percent = pct
	}

	s.opts.Surface.Append(MessageTarget, fmt.Sprintf("Progress: %d%%", s.percent))
	return nil
}

// OnSuccess completes the session.
func (s *Session) OnSuccess() error {
	if s.state != InFlight {
		return fmt.Errorf("%w: success in state %s", shared.ErrInvalidState, s.state)
	}

	s.state = Completed
	s.opts.Logger.Info("upload completed", "file", s.file.Name)
	return nil
}

// OnError fails the session and shows the retry notice once.
func (s *Session) OnError(err error) error {
	if s.state != InFlight {
		return fmt.Errorf("%w: failure in state %s", shared.ErrInvalidState, s.state)
	}
	if err == nil {
		err = shared.ErrTransport
	}

	s.state = Failed
	s.err = err
	s.opts.Logger.Error("upload failed", "file", s.file.Name, "error", err)
	s.opts.Surface.Append(MessageTarget, RetryMessage)
	return nil
}

// transfer runs on its own goroutine and only communicates through s.events.
func (s *Session) transfer(parent context.Context) {
	defer close(s.events)

	ctx, cancel := context.WithTimeout(parent, s.opts.Timeout)
	defer cancel()

	src, err := s.file.Open()
	if err != nil {
		s.events <- Event{Kind: EventFailure, Err: fmt.Errorf("%w: %w", shared.ErrTransport, err)}
		return
	}
	defer src.Close()

	total := s.file.Size
	limiter := rate.NewLimiter(rate.Limit(s.opts.ProgressHz), 1)
	reader := newProgressReader(src, func(loaded int64) {
		if loaded < total && !limiter.Allow() {
			return
		}
		select {
		case s.events <- Event{Kind: EventProgress, Loaded: loaded, Total: total}:
		default:
		}
	})

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	written := make(chan struct{})

	go func() {
		defer close(written)
		pw.CloseWithError(writeBody(mw, s.file.Name, reader, s.opts.Fields))
	}()

	resp, err := s.opts.Client.Post(ctx, s.opts.Path, pr, mw.FormDataContentType())
	pr.Close()
	<-written

	switch {
	case err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded):
		s.events <- Event{Kind: EventFailure, Err: fmt.Errorf("%w: %w: %v", shared.ErrTransport, shared.ErrTimeout, err)}
	case err != nil:
		s.events <- Event{Kind: EventFailure, Err: fmt.Errorf("%w: %w", shared.ErrTransport, err)}
	case !resp.OK():
		s.events <- Event{
			Kind:     EventFailure,
			Response: resp,
			Err:      fmt.Errorf("%w: %w: %d", shared.ErrTransport, shared.ErrUnexpectedStatus, resp.StatusCode),
		}
	default:
		s.events <- Event{Kind: EventSuccess, Response: resp}
	}
}

// writeBody writes the file part, the upload flag, and any extra fields.
func writeBody(mw *multipart.Writer, name string, content io.Reader, fields map[string][]string) error {
	part, err := mw.CreateFormFile(FileField, name)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("failed to write file part: %w", err)
	}

	if err := mw.WriteField(FlagField, "true"); err != nil {
		return fmt.Errorf("failed to write %s field: %w", FlagField, err)
	}

	for key, values := range fields {
		for _, v := range values {
			if err := mw.WriteField(key, v); err != nil {
				return fmt.Errorf("failed to write %s field: %w", key, err)
			}
		}
	}

	return mw.Close()
}
