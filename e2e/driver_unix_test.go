//go:build e2e && unix

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
)

const ringSize = 1 << 20      // 1 MiB of scrollback
var binPath = "listpick_e2e" // unified binary path

// Key constants for better readability
const (
	KeyEnter  = "\r"
	KeyEsc    = "\x1b"
	KeyCtrlC  = "\x03"
	KeySpace  = " "
	KeyDown   = "j"
	KeyUp     = "k"
	KeyQuit   = "q"
	KeyHelp   = "?"
	KeySearch = "/"
)

// ANSI escape sequence regex for normalization - covers CSI, OSC, charset, keypad modes
var ansiRe = regexp.MustCompile(
	`(?:\x1b\[[0-9;?]*[ -/]*[@-~])|` + // CSI sequences
		`(?:\x1b\][^\x07]*\x07)|` + // OSC sequences
		`(?:\x1b[\(\)][A-Za-z])|` + // charset sequences
		`(?:\x1b=|\x1b>)|` + // keypad mode sequences
		`\r`, // carriage returns
)

// TUITestFramework drives the picker in a PTY. The UI is read from the
// terminal while the picked values are collected from stdout.
type TUITestFramework struct {
	t         *testing.T
	pty       *os.File
	tty       *os.File
	cmd       *exec.Cmd
	workspace string
	stdout    bytes.Buffer
	exited    chan error

	// Ring buffer for continuous output capture
	mu   sync.Mutex
	buf  []byte
	head int
	full bool
}

// NewTUITest creates a new TUI test framework instance with its own workspace
func NewTUITest(t *testing.T) *TUITestFramework {
	return &TUITestFramework{
		t:         t,
		buf:       make([]byte, ringSize),
		workspace: t.TempDir(),
	}
}

// WriteFile creates a file in the workspace and returns its path
func (tf *TUITestFramework) WriteFile(name, content string) string {
	tf.t.Helper()
	p := filepath.Join(tf.workspace, name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		tf.t.Fatalf("write %s: %v", name, err)
	}
	return p
}

// StartApp launches listpick with given arguments in a PTY
func (tf *TUITestFramework) StartApp(args ...string) error {
	tf.cmd = exec.Command(binPath, args...)
	tf.cmd.Dir = tf.workspace
	tf.cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"LC_ALL=C",
		"LANG=C",
		"HOME="+tf.workspace, // isolate $HOME
		"XDG_CONFIG_HOME="+filepath.Join(tf.workspace, ".config"),
	)

	ptyFile, tty, err := pty.Open()
	if err != nil {
		return fmt.Errorf("failed to open pty: %w", err)
	}
	if err := pty.Setsize(ptyFile, &pty.Winsize{Rows: 40, Cols: 120}); err != nil {
		ptyFile.Close()
		tty.Close()
		return fmt.Errorf("failed to size pty: %w", err)
	}

	tf.pty = ptyFile
	tf.tty = tty
	tf.cmd.Stdin = tty
	tf.cmd.Stderr = tty
	tf.cmd.Stdout = &tf.stdout

	if err := tf.cmd.Start(); err != nil {
		ptyFile.Close()
		tty.Close()
		return fmt.Errorf("failed to start command: %w", err)
	}

	tf.exited = make(chan error, 1)
	go func() { tf.exited <- tf.cmd.Wait() }()

	tf.startReader()
	return nil
}

// startReader starts the continuous reader goroutine
func (tf *TUITestFramework) startReader() {
	go func() {
		buf := make([]byte, 8192)
		for {
			n, err := tf.pty.Read(buf)
			if n > 0 {
				tf.mu.Lock()
				for i := 0; i < n; i++ {
					tf.buf[tf.head] = buf[i]
					tf.head = (tf.head + 1) % ringSize
					if tf.head == 0 {
						tf.full = true
					}
				}
				tf.mu.Unlock()
			}
			if err != nil {
				return
			}
		}
	}()
}

// SendKeys sends keystrokes to the application
func (tf *TUITestFramework) SendKeys(keys ...string) error {
	tf.t.Helper()
	for _, k := range keys {
		if _, err := tf.pty.Write([]byte(k)); err != nil {
			return err
		}
		// Separate keys so they are not read as one paste
		time.Sleep(30 * time.Millisecond)
	}
	return nil
}

// SeePlain waits for specific plain text to appear (normalized output)
func (tf *TUITestFramework) SeePlain(text string) bool {
	tf.t.Helper()
	return tf.WaitFor(func(s string) bool {
		return strings.Contains(ansiRe.ReplaceAllString(s, ""), text)
	}, 3*time.Second)
}

// WaitFor waits for a predicate to be true in the output
func (tf *TUITestFramework) WaitFor(pred func(string) bool, timeout time.Duration) bool {
	tf.t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		if pred(tf.Snapshot()) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(25 * time.Millisecond) // simple, reliable polling; tests only
	}
}

// WaitExit waits for the process and returns its exit code
func (tf *TUITestFramework) WaitExit(timeout time.Duration) (int, error) {
	tf.t.Helper()
	select {
	case err := <-tf.exited:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 0, err
	case <-time.After(timeout):
		return -1, fmt.Errorf("app did not exit within %s\n--- tail ---\n%s", timeout, tf.tail(2048))
	}
}

// Stdout returns the picked values printed by the app, one per line
func (tf *TUITestFramework) Stdout() []string {
	out := strings.TrimSpace(tf.stdout.String())
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

// Snapshot returns the current contents of the ring buffer (thread-safe)
func (tf *TUITestFramework) Snapshot() string {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	if !tf.full {
		return string(tf.buf[:tf.head])
	}
	out := make([]byte, ringSize)
	copy(out, tf.buf[tf.head:])
	copy(out[ringSize-tf.head:], tf.buf[:tf.head])
	return string(out)
}

func (tf *TUITestFramework) tail(n int) string {
	s := ansiRe.ReplaceAllString(tf.Snapshot(), "")
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return s
}

// Cleanup closes the PTY and terminates the application
func (tf *TUITestFramework) Cleanup() {
	// Close PTY first to deliver SIGHUP to child process
	if tf.pty != nil {
		_ = tf.pty.Close()
		tf.pty = nil
	}
	if tf.tty != nil {
		_ = tf.tty.Close()
		tf.tty = nil
	}
	if tf.cmd != nil && tf.cmd.Process != nil {
		_ = tf.cmd.Process.Kill()
		select {
		case <-tf.exited:
		case <-time.After(time.Second):
		}
		tf.cmd = nil
	}
}
