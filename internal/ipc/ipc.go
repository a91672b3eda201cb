// Package ipc provides helpers for the local Unix-socket channel used by
// CLI sub-commands (add/list/pin/...) to talk to a running shard daemon
// instead of opening the database themselves.
//
// The channel carries newline-delimited JSON requests and responses (see
// internal/wire). The daemon listens on the socket; CLI sub-commands probe
// for it and fall back to opening the store directly if it is absent.
package ipc

import (
	"net"
	"os"
	"path/filepath"
)

// SocketPath returns the path for the IPC socket.
//
// Resolution order: $SHARD_SOCKET, then $XDG_RUNTIME_DIR/shard.sock, then
// $TMPDIR/shard.sock.
func SocketPath() string {
	if s := os.Getenv("SHARD_SOCKET"); s != "" {
		return s
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "shard.sock")
	}
	return filepath.Join(os.TempDir(), "shard.sock")
}

// IsRunning reports whether a shard daemon appears to be listening on the
// IPC socket. It does a cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	c, err := Dial()
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates and returns a net.Listener on the IPC socket path, removing
// any stale socket file first.
func Listen() (net.Listener, error) {
	path := SocketPath()
	// Remove stale socket from a previous (crashed) run.
	_ = os.Remove(path)
	return net.Listen("unix", path)
}

// Dial connects to the IPC socket.
func Dial() (net.Conn, error) {
	return net.Dial("unix", SocketPath())
}
