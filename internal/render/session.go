// Package render runs the external renderer on a pseudo-terminal and streams
// its output to the shared screen buffer.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"sync/atomic"

	clog "github.com/charmbracelet/log"
	"github.com/charmbracelet/x/xpty"

	"manimwatch/internal/artifact"
)

// Defaults for the renderer invocation.
const (
	DefaultCommand        = "manim"
	DefaultPreviewCommand = "mpv"
)

// Chrome is the space around the output pane: status line, legend line,
// borders and margins.
const (
	ChromeRows = 6
	ChromeCols = 4
)

const readBufSize = 8192

// Size is a terminal size in cells.
type Size struct {
	Cols int
	Rows int
}

// PtySize returns the renderer's PTY size for a viewport, leaving room for
// the chrome. Neither dimension goes below 1.
func PtySize(viewport Size) Size {
	s := Size{Cols: viewport.Cols - ChromeCols, Rows: viewport.Rows - ChromeRows}
	if s.Cols < 1 {
		s.Cols = 1
	}
	if s.Rows < 1 {
		s.Rows = 1
	}
	return s
}

// Request describes one render.
type Request struct {
	Source  string
	Quality Quality
	Dir     string
	Size    Size
}

// Runner starts render sessions. The zero value is not usable; set Sink.
type Runner struct {
	// Command is the renderer executable. Defaults to DefaultCommand.
	Command string
	// PreviewCommand is passed to --preview_command. Defaults to
	// DefaultPreviewCommand.
	PreviewCommand string
	// Sink receives raw renderer output and the exit line. It must be safe
	// for concurrent use; screen.Buffer is.
	Sink io.Writer
	// Artifacts receives paths found in the output. Optional.
	Artifacts *artifact.Store
	// Logger defaults to the charmbracelet/log default logger.
	Logger *clog.Logger

	openPty func(cols, rows int) (xpty.Pty, error)
}

func (r *Runner) command() string {
	if r.Command == "" {
		return DefaultCommand
	}
	return r.Command
}

func (r *Runner) logger() *clog.Logger {
	if r.Logger == nil {
		return clog.Default()
	}
	return r.Logger
}

// Args returns the renderer arguments for a request.
func (r *Runner) Args(req Request) []string {
	preview := r.PreviewCommand
	if preview == "" {
		preview = DefaultPreviewCommand
	}
	return []string{
		"render",
		"--preview",
		"--preview_command", preview,
		"--quality", req.Quality.Symbol(),
		req.Source,
	}
}

// Session is a running render. Nothing needs to be done with it; the output
// goroutine cleans up on its own.
type Session struct {
	Request Request
	cmd     *exec.Cmd
	done    chan struct{}
	code    atomic.Int64
}

// Done is closed once output is drained, the exit line is written and the
// PTY is closed.
func (s *Session) Done() <-chan struct{} { return s.done }

// ExitCode returns the renderer's exit code, or -1 while running or when it
// could not be determined.
func (s *Session) ExitCode() int { return int(s.code.Load()) }

// Pid returns the renderer's process id.
func (s *Session) Pid() int {
	if s.cmd == nil || s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}

// Start allocates a PTY, spawns the renderer on it and returns once the
// process is running. Output is pumped on a detached goroutine. ctx only
// bounds the wait for exit on platforms where that needs it; it does not
// cancel the render.
func (r *Runner) Start(ctx context.Context, req Request) (*Session, error) {
	if r.Sink == nil {
		return nil, errors.New("render: no output sink")
	}
	size := Size{Cols: max(req.Size.Cols, 1), Rows: max(req.Size.Rows, 1)}
	open := r.openPty
	if open == nil {
		open = func(cols, rows int) (xpty.Pty, error) { return xpty.NewPty(cols, rows) }
	}
	pty, err := open(size.Cols, size.Rows)
	if err != nil {
		return nil, fmt.Errorf("allocate pty: %w", err)
	}

	cmd := exec.Command(r.command(), r.Args(req)...)
	cmd.Dir = req.Dir
	if err := pty.Start(cmd); err != nil {
		_ = pty.Close()
		return nil, fmt.Errorf("start %s: %w", r.command(), err)
	}
	// Drop our handle on the child side, otherwise reads on the controller
	// never see end of output after the child exits.
	if up, ok := pty.(*xpty.UnixPty); ok {
		_ = up.Slave().Close()
	}

	s := &Session{Request: req, cmd: cmd, done: make(chan struct{})}
	s.code.Store(-1)
	r.logger().Info("render started", "source", req.Source, "quality", req.Quality.Symbol(), "pid", s.Pid())

	go r.run(ctx, s, pty)
	return s, nil
}

// run owns the session after spawn. Errors stay here; they are logged and
// end the session, never reaching the UI.
func (r *Runner) run(ctx context.Context, s *Session, pty xpty.Pty) {
	defer close(s.done)
	defer func() { _ = pty.Close() }()

	log := r.logger().With("source", s.Request.Source)
	if err := r.pump(pty, artifact.NewLocator(r.Artifacts, s.Request.Dir)); err != nil {
		log.Debug("render output ended", "err", err)
	}

	err := xpty.WaitProcess(ctx, s.cmd)
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		log.Warn("render wait failed", "err", err)
		return
	}
	code := 0
	if s.cmd.ProcessState != nil {
		code = s.cmd.ProcessState.ExitCode()
	}
	s.code.Store(int64(code))
	log.Info("render finished", "code", code)
	r.writeExit(code)
}

// pump copies output chunks to the sink and the locator until a read returns
// nothing. A chunk is written to the sink unchanged before it is scanned.
func (r *Runner) pump(src io.Reader, loc *artifact.Locator) error {
	buf := make([]byte, readBufSize)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if _, werr := r.Sink.Write(chunk); werr != nil {
				return fmt.Errorf("write output: %w", werr)
			}
			if path, ok := loc.Feed(chunk); ok {
				r.logger().Debug("artifact located", "path", path)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			// Linux reports EIO on the controller once the child side closes.
			return err
		}
		if n == 0 {
			return nil
		}
	}
}

func (r *Runner) writeExit(code int) {
	name := filepath.Base(r.command())
	line := fmt.Sprintf("\r\n%s exited with code: %d\r\n", name, code)
	if _, err := r.Sink.Write([]byte(line)); err != nil {
		r.logger().Warn("write exit status", "err", err)
	}
}
