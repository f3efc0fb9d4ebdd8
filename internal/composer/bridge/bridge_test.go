package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helperEnv = "ELEMENT_DOCS_BRIDGE_HELPER"

// TestMain lets the test binary stand in for node: Start runs it with the
// script path and entry URL as arguments.
func TestMain(m *testing.M) {
	if mode := os.Getenv(helperEnv); mode != "" {
		runHelper(mode)
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func runHelper(mode string) {
	out := json.NewEncoder(os.Stdout)
	switch mode {
	case "broken":
		_ = out.Encode(hello{Ready: false, Error: "Cannot find module './index.mjs'"})
		return
	case "silent":
		time.Sleep(10 * time.Second)
		return
	}
	_ = out.Encode(hello{Ready: true, Version: "11.9.0"})

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		var req request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			_ = out.Encode(response{Error: err.Error()})
			continue
		}
		switch req.Symbol {
		case "echo":
			raw, _ := json.Marshal(req.Args)
			_ = out.Encode(response{ID: req.ID, Result: raw})
		case "runTypedoc":
			_ = out.Encode(response{ID: req.ID, Result: json.RawMessage(`{"$configuration":"cfg-1"}`)})
		case "sleep":
			time.Sleep(10 * time.Second)
		case "wrongID":
			_ = out.Encode(response{ID: "other", Result: json.RawMessage(`null`)})
		default:
			_ = out.Encode(response{ID: req.ID, Result: json.RawMessage(`null`), Error: "TypeError: " + req.Symbol + " is not a function"})
		}
	}
}

func startHelper(t *testing.T, mode string, timeout time.Duration) (*Bridge, error) {
	t.Helper()
	t.Setenv(helperEnv, mode)
	exe, err := os.Executable()
	require.NoError(t, err)
	return Start(context.Background(), Options{
		Node:             exe,
		Entry:            "./index.mjs",
		Dir:              t.TempDir(),
		Stderr:           io.Discard,
		HandshakeTimeout: timeout,
	})
}

func TestBridgeCall(t *testing.T) {
	b, err := startHelper(t, "ok", 10*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	assert.Equal(t, "11.9.0", b.Version())

	raw, err := b.Call(context.Background(), "echo", "text", Handle{ID: "cfg-1"}, true, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `["text", {"$configuration": "cfg-1"}, true, null]`, string(raw))

	raw, err = b.Call(context.Background(), "runTypedoc")
	require.NoError(t, err)
	var h Handle
	require.NoError(t, json.Unmarshal(raw, &h))
	assert.Equal(t, "cfg-1", h.ID)
}

func TestBridgeCallError(t *testing.T) {
	b, err := startHelper(t, "ok", 10*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	_, err = b.Call(context.Background(), "missing")
	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, "missing", callErr.Symbol)
	assert.Contains(t, err.Error(), "is not a function")

	// An engine exception leaves the bridge usable.
	_, err = b.Call(context.Background(), "echo")
	assert.NoError(t, err)
}

func TestBridgeCallTimeoutKillsProcess(t *testing.T) {
	b, err := startHelper(t, "ok", 10*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = b.Call(ctx, "sleep")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = b.Call(context.Background(), "echo")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBridgeMismatchedResponse(t *testing.T) {
	b, err := startHelper(t, "ok", 10*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	_, err = b.Call(context.Background(), "wrongID")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestStartFailures(t *testing.T) {
	t.Run("engine reports load error", func(t *testing.T) {
		_, err := startHelper(t, "broken", 10*time.Second)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Cannot find module")
	})

	t.Run("handshake timeout", func(t *testing.T) {
		_, err := startHelper(t, "silent", 200*time.Millisecond)
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})

	t.Run("missing executable", func(t *testing.T) {
		_, err := Start(context.Background(), Options{
			Node:  filepath.Join(t.TempDir(), "no-such-node"),
			Entry: "./index.mjs",
		})
		require.Error(t, err)
	})
}

func TestCloseRemovesScript(t *testing.T) {
	b, err := startHelper(t, "ok", 10*time.Second)
	require.NoError(t, err)

	script := b.scriptPath
	assert.FileExists(t, script)
	require.NoError(t, b.Close())
	assert.NoFileExists(t, script)
	assert.NoError(t, b.Close())

	_, err = b.Call(context.Background(), "echo")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestEntryURL(t *testing.T) {
	dir := t.TempDir()

	got, err := entryURL("./index.mjs", dir)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "file://"))
	assert.True(t, strings.HasSuffix(got, "/index.mjs"))

	got, err = entryURL("file:///opt/composer/index.mjs", dir)
	require.NoError(t, err)
	assert.Equal(t, "file:///opt/composer/index.mjs", got)

	got, err = entryURL(filepath.Join(dir, "with space.mjs"), "")
	require.NoError(t, err)
	assert.Contains(t, got, "with%20space.mjs")

	_, err = entryURL("", dir)
	assert.Error(t, err)
}
