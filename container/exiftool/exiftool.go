// Package exiftool manages a single long-lived exiftool worker in stay-open
// mode. It is the fallback embedder for container/tag combinations the
// in-process codecs do not cover.
//
// The pool is process-wide shared state with its own lifecycle: lazily
// started, capped at one worker, per-task timeout, and crash recovery that
// recreates the worker exactly once before surfacing the original error.
package exiftool

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var (
	ErrTaskTimeout = errors.New("exiftool: task timed out")
	ErrCrashed     = errors.New("exiftool: worker terminated")
)

// DefaultTaskTimeout bounds a single exiftool command.
const DefaultTaskTimeout = 25 * time.Second

// Pool runs exiftool commands on one shared worker.
type Pool struct {
	// Binary is the exiftool executable. Empty means "exiftool" on PATH.
	Binary string

	// TaskTimeout bounds one command; zero means DefaultTaskTimeout.
	TaskTimeout time.Duration

	mu     sync.Mutex
	worker *worker
}

var (
	sharedOnce sync.Once
	shared     *Pool
)

// Shared returns the process-wide pool, created on first use.
func Shared() *Pool {
	sharedOnce.Do(func() { shared = &Pool{} })
	return shared
}

type worker struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	waited chan error
}

func (p *Pool) binary() string {
	if p.Binary != "" {
		return p.Binary
	}
	return "exiftool"
}

func (p *Pool) taskTimeout() time.Duration {
	if p.TaskTimeout > 0 {
		return p.TaskTimeout
	}
	return DefaultTaskTimeout
}

// Run executes one exiftool command (argument per line, stay-open protocol)
// and returns its output. If the worker has crashed, it is recreated exactly
// once before the original error is surfaced.
func (p *Pool) Run(ctx context.Context, args ...string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out, err := p.runLocked(ctx, args)
	if errors.Is(err, ErrCrashed) {
		p.discardLocked()
		out, err = p.runLocked(ctx, args)
		if err != nil {
			p.discardLocked()
		}
	}
	return out, err
}

// Close shuts the worker down. The pool restarts lazily on next use.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.worker != nil {
		fmt.Fprint(p.worker.stdin, "-stay_open\nFalse\n")
		p.worker.stdin.Close()
		select {
		case <-p.worker.waited:
		case <-time.After(2 * time.Second):
			p.worker.cmd.Process.Kill()
		}
		p.worker = nil
	}
}

func (p *Pool) runLocked(ctx context.Context, args []string) (string, error) {
	if p.worker == nil {
		w, err := startWorker(p.binary())
		if err != nil {
			return "", err
		}
		p.worker = w
	}
	w := p.worker

	var req strings.Builder
	for _, a := range args {
		req.WriteString(a)
		req.WriteString("\n")
	}
	req.WriteString("-execute\n")
	if _, err := io.WriteString(w.stdin, req.String()); err != nil {
		return "", ErrCrashed
	}

	timeout := p.taskTimeout()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	type readResult struct {
		out string
		err error
	}
	done := make(chan readResult, 1)
	go func() {
		out, err := readUntilReady(w.stdout)
		done <- readResult{out, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return "", ErrCrashed
		}
		return r.out, nil
	case <-deadline.C:
		// Abandon the task; the worker is unusable mid-response.
		p.discardLocked()
		return "", ErrTaskTimeout
	case <-ctx.Done():
		p.discardLocked()
		return "", ctx.Err()
	}
}

func (p *Pool) discardLocked() {
	if p.worker == nil {
		return
	}
	p.worker.stdin.Close()
	p.worker.cmd.Process.Kill()
	p.worker = nil
}

func startWorker(binary string) (*worker, error) {
	cmd := exec.Command(binary, "-stay_open", "True", "-@", "-")
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	waited := make(chan error, 1)
	go func() { waited <- cmd.Wait() }()

	return &worker{
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdout),
		waited: waited,
	}, nil
}

// readUntilReady consumes one response, terminated by the {ready} sentinel.
func readUntilReady(r *bufio.Reader) (string, error) {
	var sb strings.Builder
	for {
		line, err := r.ReadString('\n')
		if strings.TrimRight(line, "\r\n") == "{ready}" {
			return sb.String(), nil
		}
		sb.WriteString(line)
		if err != nil {
			return sb.String(), ErrCrashed
		}
	}
}

// WriteDescription embeds a description value into a media buffer by shelling
// out to exiftool on a temporary copy. The XMP dc:description tag is the one
// duplicate every Identik reader understands.
func (p *Pool) WriteDescription(ctx context.Context, buf []byte, value string, suffix string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "identik-embed-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "media"+suffix)
	if err := os.WriteFile(path, buf, 0o600); err != nil {
		return nil, err
	}

	if _, err := p.Run(ctx, "-overwrite_original", "-XMP-dc:Description="+value, path); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}
