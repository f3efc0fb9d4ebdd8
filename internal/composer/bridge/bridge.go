// Package bridge runs the docs composer engine in a node subprocess and calls
// its exported functions over a line-delimited JSON protocol on stdio.
//
// After start the bridge writes one handshake line:
//
//	{"ready": true, "version": "11.9.0"}
//
// Each call is a request line answered by one response line with the same id:
//
//	-> {"id": "<uuid>", "symbol": "buildFile", "args": [...]}
//	<- {"id": "<uuid>", "result": ..., "error": ""}
//
// Values returned by runTypedoc stay inside the node process. The host gets a
// Handle in their place and passes it back as an argument.
package bridge

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

//go:embed bridge.mjs
var script []byte

// DefaultHandshakeTimeout bounds how long the engine module may take to load.
const DefaultHandshakeTimeout = time.Minute

// ErrClosed is returned by calls on a bridge that was closed or whose
// process died.
var ErrClosed = errors.New("composer bridge closed")

// Handle references a value kept inside the node process.
type Handle struct {
	ID string `json:"$configuration"`
}

// Options configure the subprocess.
type Options struct {
	// Node is the node executable. Defaults to "node".
	Node string
	// Entry is the engine module, a path or a URL understood by import().
	Entry string
	// Dir is the working directory of the subprocess.
	Dir string
	// Stderr receives the engine's diagnostic output. Defaults to os.Stderr.
	Stderr io.Writer
	// HandshakeTimeout defaults to DefaultHandshakeTimeout.
	HandshakeTimeout time.Duration
}

type hello struct {
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Error   string `json:"error"`
}

type request struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Args   []any  `json:"args"`
}

type response struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// Bridge is a running engine process. Calls are serialized.
type Bridge struct {
	mu         sync.Mutex
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	enc        *json.Encoder
	dec        *json.Decoder
	version    string
	scriptPath string
	closed     bool
}

// Start spawns node with the bridge script and waits for the handshake.
func Start(ctx context.Context, opts Options) (*Bridge, error) {
	if opts.Node == "" {
		opts.Node = "node"
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = DefaultHandshakeTimeout
	}
	entry, err := entryURL(opts.Entry, opts.Dir)
	if err != nil {
		return nil, err
	}

	scriptPath, err := writeScript()
	if err != nil {
		return nil, err
	}

	// The process outlives ctx, which only bounds the handshake.
	cmd := exec.Command(opts.Node, scriptPath, entry) //nolint:gosec // node and entry come from the operator's environment
	cmd.Dir = opts.Dir
	cmd.Stderr = opts.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		_ = os.Remove(scriptPath)
		return nil, err
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		_ = os.Remove(scriptPath)
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		_ = os.Remove(scriptPath)
		return nil, fmt.Errorf("start %s: %w", opts.Node, err)
	}

	b := &Bridge{
		cmd:        cmd,
		stdin:      stdin,
		enc:        json.NewEncoder(stdin),
		dec:        json.NewDecoder(stdout),
		scriptPath: scriptPath,
	}

	hsCtx, cancel := context.WithTimeout(ctx, opts.HandshakeTimeout)
	defer cancel()

	var h hello
	errCh := make(chan error, 1)
	go func() { errCh <- b.dec.Decode(&h) }()

	select {
	case err := <-errCh:
		if err != nil {
			b.kill()
			return nil, fmt.Errorf("read composer handshake: %w", err)
		}
	case <-hsCtx.Done():
		b.kill()
		return nil, fmt.Errorf("waiting for composer handshake: %w", hsCtx.Err())
	}

	if !h.Ready {
		b.kill()
		if h.Error == "" {
			h.Error = "engine did not report ready"
		}
		return nil, fmt.Errorf("load %s: %s", opts.Entry, h.Error)
	}
	b.version = h.Version
	return b, nil
}

// Version is the engine version reported in the handshake. It is empty when
// the engine exposes none.
func (b *Bridge) Version() string { return b.version }

// Call invokes symbol with args and returns the raw JSON result. When ctx
// expires the process is killed and the bridge is unusable afterwards.
func (b *Bridge) Call(ctx context.Context, symbol string, args ...any) (json.RawMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}
	if args == nil {
		args = []any{}
	}
	req := request{ID: uuid.NewString(), Symbol: symbol, Args: args}

	errCh := make(chan error, 1)
	go func() { errCh <- b.enc.Encode(req) }()
	select {
	case err := <-errCh:
		if err != nil {
			b.kill()
			return nil, fmt.Errorf("send %s: %w", symbol, err)
		}
	case <-ctx.Done():
		b.kill()
		return nil, ctx.Err()
	}

	respCh := make(chan response, 1)
	decErrCh := make(chan error, 1)
	go func() {
		var resp response
		if err := b.dec.Decode(&resp); err != nil {
			decErrCh <- err
			return
		}
		respCh <- resp
	}()

	select {
	case resp := <-respCh:
		if resp.ID != req.ID {
			b.kill()
			return nil, fmt.Errorf("%s: response id %q does not match request %q", symbol, resp.ID, req.ID)
		}
		if resp.Error != "" {
			return nil, &CallError{Symbol: symbol, Message: resp.Error}
		}
		return resp.Result, nil
	case err := <-decErrCh:
		b.kill()
		return nil, fmt.Errorf("read %s response: %w", symbol, err)
	case <-ctx.Done():
		b.kill()
		return nil, ctx.Err()
	}
}

// Close ends the subprocess, giving it a second to exit after stdin closes.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	_ = b.stdin.Close()

	done := make(chan struct{})
	go func() {
		_ = b.cmd.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		_ = b.cmd.Process.Kill()
		<-done
	}
	return os.Remove(b.scriptPath)
}

// kill must be called with mu held or before the bridge is shared.
func (b *Bridge) kill() {
	if b.closed {
		return
	}
	b.closed = true
	_ = b.cmd.Process.Kill()
	go func() { _ = b.cmd.Wait() }()
	_ = os.Remove(b.scriptPath)
}

// CallError is an exception raised inside the engine.
type CallError struct {
	Symbol  string
	Message string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("composer %s: %s", e.Symbol, e.Message)
}

func writeScript() (string, error) {
	f, err := os.CreateTemp("", "element-docs-bridge-*.mjs")
	if err != nil {
		return "", fmt.Errorf("create bridge script: %w", err)
	}
	if _, err := f.Write(script); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write bridge script: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// entryURL turns a module path into the file URL import() expects. Values
// that already carry a scheme are passed through.
func entryURL(entry, dir string) (string, error) {
	if entry == "" {
		return "", errors.New("composer entry module is empty")
	}
	if u, err := url.Parse(entry); err == nil && len(u.Scheme) > 1 {
		return entry, nil
	}
	if !filepath.IsAbs(entry) {
		base := dir
		if base == "" {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			base = wd
		}
		entry = filepath.Join(base, entry)
	}
	p := filepath.ToSlash(entry)
	if filepath.VolumeName(entry) != "" {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String(), nil
}
