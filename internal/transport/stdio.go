package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stoicstudio/McpCli/internal/config"
	"github.com/stoicstudio/McpCli/internal/errors"
)

const (
	// maxScanTokenSize is the maximum buffer size for reading server output
	// lines.
	maxScanTokenSize = 1024 * 1024 // 1MB

	// lineBufferSize is how many undelivered lines the transport holds.
	// Lines abandoned by a cancelled ReadLine stay here for later reads.
	lineBufferSize = 32

	// startGrace is how long Start watches for an immediate process exit
	// before declaring the spawn successful.
	startGrace = 200 * time.Millisecond

	// shutdownGrace is how long Close waits after closing stdin before
	// force-killing the process.
	shutdownGrace = 2 * time.Second
)

// Stdio owns a spawned server process and frames newline-delimited messages
// over its standard streams.
//
// The process and its pipes are exclusively owned by one Stdio value; the
// value is single-use and must be Closed on every exit path.
type Stdio struct {
	log *slog.Logger

	mu          sync.Mutex // protects stdin writes and close state
	cmd         *exec.Cmd
	stdin       io.WriteCloser
	stdout      io.ReadCloser
	stdinClosed bool

	lines    chan string
	closing  chan struct{}
	procDone chan struct{}
	waitErr  error // valid once procDone is closed

	eg        errgroup.Group
	closeOnce sync.Once
	closeErr  error
}

// Compile-time verification that Stdio implements the Transport interface.
var _ config.Transport = (*Stdio)(nil)

// NewStdio creates a transport that will spawn the server on Start.
func NewStdio(log *slog.Logger) *Stdio {
	return &Stdio{
		log:      log.With("component", "transport"),
		lines:    make(chan string, lineBufferSize),
		closing:  make(chan struct{}),
		procDone: make(chan struct{}),
	}
}

// Start spawns the server process with stdin and stdout redirected.
//
// Failure is reported, not retried: a spawn error or a process that exits
// within a short grace window after starting both yield a StartError.
func (t *Stdio) Start(
	ctx context.Context,
	command string,
	args []string,
	workDir string,
) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cmd != nil {
		return &errors.InvalidStateError{Op: "start transport", State: "started"}
	}

	t.log.Info("Starting server process", "command", command, "args", args)

	//nolint:gosec // G204: spawning a user-chosen server command is the point
	cmd := exec.Command(command, args...)
	cmd.Dir = workDir
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return &errors.StartError{Command: command, Err: fmt.Errorf("stdin pipe: %w", err)}
	}

	// The stdout pipe is owned by the transport, not by exec: Wait closes
	// pipes created with StdoutPipe on process exit, which would discard
	// output the scanner has not drained yet.
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return &errors.StartError{Command: command, Err: fmt.Errorf("stdout pipe: %w", err)}
	}

	cmd.Stdout = stdoutW

	if err := cmd.Start(); err != nil {
		_ = stdoutR.Close()
		_ = stdoutW.Close()

		return &errors.StartError{Command: command, Err: err}
	}

	// Drop the parent's copy of the write end so the scanner sees EOF once
	// the child exits.
	_ = stdoutW.Close()

	t.cmd = cmd
	t.stdin = stdin
	t.stdout = stdoutR

	go func() {
		t.waitErr = cmd.Wait()

		close(t.procDone)
	}()

	t.eg.Go(t.readLoop)

	// Catch servers that die right after spawning, before the caller
	// attempts a handshake against a corpse.
	select {
	case <-t.procDone:
		t.log.Error("Server process exited immediately", "error", t.waitErr)

		return &errors.StartError{
			Command: command,
			Err:     fmt.Errorf("process exited immediately: %w", exitReason(t.waitErr)),
		}

	case <-ctx.Done():
		// The process is already running; a start that does not complete
		// must not leave it behind.
		_ = cmd.Process.Kill()
		<-t.procDone

		return &errors.StartError{Command: command, Err: ctx.Err()}

	case <-time.After(startGrace):
	}

	t.log.Info("Server process started", "pid", cmd.Process.Pid)

	return nil
}

// readLoop scans stdout into the line channel. It exits when the process
// dies (pipe closed) or the transport starts closing, and closes the line
// channel so blocked readers observe end-of-stream.
func (t *Stdio) readLoop() error {
	defer close(t.lines)
	defer t.log.Debug("Read loop stopped")

	scanner := bufio.NewScanner(t.stdout)
	buf := make([]byte, maxScanTokenSize)
	scanner.Buffer(buf, maxScanTokenSize)

	for scanner.Scan() {
		select {
		case t.lines <- scanner.Text():
		case <-t.closing:
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		t.log.Debug("Scanner stopped", "error", err)
	}

	return nil
}

// SendLine writes one line plus terminator to the server's stdin.
//
// The write runs in a goroutine so a blocked pipe respects context
// cancellation; on cancellation stdin is closed to unblock the write and the
// stream is unusable afterwards.
func (t *Stdio) SendLine(ctx context.Context, line string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stdin == nil {
		return errors.ErrNotConnected
	}

	if t.stdinClosed {
		return errors.ErrTransportClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	t.log.Debug("Sending line", "line_len", len(line))

	done := make(chan error, 1)

	go func() {
		_, err := io.WriteString(t.stdin, line+"\n")
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("write to stdin: %w", err)
		}

		return nil

	case <-ctx.Done():
		t.log.Debug("Context cancelled during write, closing stdin")

		_ = t.stdin.Close()
		t.stdinClosed = true

		return ctx.Err()
	}
}

// ReadLine blocks until one line of server output is available, the context
// is cancelled, or the stream ends.
//
// Cancellation abandons only this wait: the scanner keeps running and any
// line it produces stays buffered for the next ReadLine, so a cancelled read
// never corrupts the stream.
func (t *Stdio) ReadLine(ctx context.Context) (string, error) {
	t.mu.Lock()
	started := t.cmd != nil
	t.mu.Unlock()

	if !started {
		return "", errors.ErrNotConnected
	}

	select {
	case line, ok := <-t.lines:
		if !ok {
			return "", errors.ErrTransportClosed
		}

		return line, nil

	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Connected reports whether the server process is still running.
func (t *Stdio) Connected() bool {
	t.mu.Lock()
	started := t.cmd != nil
	t.mu.Unlock()

	if !started {
		return false
	}

	select {
	case <-t.procDone:
		return false
	default:
		return true
	}
}

// Close tears down the connection: close stdin first so the server sees end
// of input, allow a grace period for a clean exit, then force-kill.
//
// Close is idempotent and must run on every exit path. Teardown errors are
// logged and suppressed.
func (t *Stdio) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.teardown()
	})

	return t.closeErr
}

func (t *Stdio) teardown() error {
	t.mu.Lock()

	if t.cmd == nil {
		t.mu.Unlock()

		return nil
	}

	t.log.Debug("Closing transport")

	close(t.closing)

	if t.stdin != nil && !t.stdinClosed {
		_ = t.stdin.Close()
		t.stdinClosed = true
	}

	cmd := t.cmd
	t.mu.Unlock()

	select {
	case <-t.procDone:
		t.log.Debug("Server exited after stdin close")

	case <-time.After(shutdownGrace):
		t.log.Debug("Server still alive after grace period, killing", "pid", cmd.Process.Pid)

		if err := cmd.Process.Kill(); err != nil {
			t.log.Debug("Kill failed", "error", err)
		}

		<-t.procDone
	}

	if err := t.eg.Wait(); err != nil {
		t.log.Debug("Read loop error during close", "error", err)
	}

	if t.stdout != nil {
		_ = t.stdout.Close()
	}

	t.log.Info("Transport closed")

	return nil
}

// exitReason normalizes a nil Wait error (clean exit) into something
// readable for StartError messages.
func exitReason(err error) error {
	if err == nil {
		return fmt.Errorf("clean exit before handshake")
	}

	return err
}
