package main

import (
	"fmt"
	"log/slog"
	"net"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/shard/internal/clip"
	"go.klb.dev/shard/internal/crypto"
	"go.klb.dev/shard/internal/ipc"
	"go.klb.dev/shard/internal/pins"
	"go.klb.dev/shard/internal/protocol"
	"go.klb.dev/shard/internal/store"
	"go.klb.dev/shard/internal/wire"
)

func newServeCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the capture daemon (+ snippet API socket)",
		Long: `Starts the shard daemon. The daemon watches the system clipboard and
stores every new text it sees — classified as a color, code, or plain text.
Repeated colors are bumped back to the top of the history instead of being
stored twice.

Other shard sub-commands talk to the daemon over a local Unix socket. Pass
--addr to additionally expose the API over TCP; with --token the TCP stream
is end-to-end encrypted (NaCl secretbox, key derived from the token).

Config file search order:
  /etc/shard/shard.toml
  $HOME/.config/shard/shard.toml
  path supplied via --config

Precedence (lowest → highest): defaults → config file → SHARD_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runServe(v) },
	}

	f := cmd.Flags()
	f.String("addr", "", "TCP listen address (empty = Unix socket only)")
	f.String("token", "", "shared secret for TCP connections (empty = no encryption)")
	f.Bool("no-clipboard", false, "disable clipboard capture (API-only daemon)")
	addDBFlag(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

// daemon holds the shared state behind both listeners. The store performs no
// internal locking, so every access goes through mu.
type daemon struct {
	mu      sync.Mutex
	st      *store.Store
	reg     *pins.Registry
	watcher *clip.Watcher
	dbPath  string
}

func runServe(v *viper.Viper) error {
	setupLogging(v)

	addr := v.GetString("addr")
	token := v.GetString("token")
	noClipboard := v.GetBool("no-clipboard")
	dbPath := v.GetString("db")
	if dbPath == "" {
		dbPath = store.DefaultPath()
	}

	var key *[32]byte
	if token != "" {
		var err error
		key, err = crypto.DeriveKey(token)
		if err != nil {
			return fmt.Errorf("key derivation: %w", err)
		}
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	d := &daemon{
		st:     st,
		reg:    pins.New(),
		dbPath: dbPath,
	}
	st.SetDeleteHook(d.reg.OnSnippetDeleted)

	slog.Info("shard daemon starting",
		"version", Version,
		"db", dbPath,
		"clipboard", !noClipboard,
		"addr", addr,
		"encrypted", key != nil,
	)

	if !noClipboard {
		d.watcher = clip.New()
		defer d.watcher.Close()
		if d.watcher.Available() {
			go d.capture()
		}
	}

	ipcLn, err := ipc.Listen()
	if err != nil {
		return fmt.Errorf("ipc listen: %w", err)
	}
	slog.Info("IPC socket listening", "path", ipc.SocketPath())

	if addr != "" {
		tcpLn, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		slog.Info("TCP listening", "addr", tcpLn.Addr())
		go d.serveListener(tcpLn, key)
	}

	d.serveListener(ipcLn, nil)
	return nil
}

// capture stores every new clipboard text the watcher reports.
func (d *daemon) capture() {
	for text := range d.watcher.Changes() {
		d.mu.Lock()
		rec, err := addDirect(d.st, text, "")
		d.mu.Unlock()
		if err != nil {
			slog.Error("clipboard capture failed", "err", err)
			continue
		}
		slog.Debug("captured snippet", "id", rec.ID, "kind", rec.Kind, "label", rec.Label)
	}
}

func (d *daemon) serveListener(ln net.Listener, key *[32]byte) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			slog.Error("accept failed", "err", err)
			return
		}
		go d.handleConn(conn, key)
	}
}

func (d *daemon) handleConn(conn net.Conn, key *[32]byte) {
	defer conn.Close()
	wc := wire.New(conn, key)

	for {
		req, err := wc.ReadRequest()
		if err != nil {
			return
		}
		resp := d.handle(req)
		if err := wc.WriteResponse(resp); err != nil {
			slog.Warn("response write failed", "err", err)
			return
		}
	}
}

func (d *daemon) handle(req *protocol.Request) *protocol.Response {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch req.Op {
	case protocol.OpAdd:
		return d.handleAdd(req)

	case protocol.OpList:
		f, err := parseFilter(req.Kind, req.Query)
		if err != nil {
			return protocol.Errorf("%v", err)
		}
		snips, err := d.st.List(f)
		if err != nil {
			return protocol.Errorf("list: %v", err)
		}
		return &protocol.Response{Snippets: records(snips)}

	case protocol.OpGet:
		snip, err := resolveID(d.st, req.ID)
		if err != nil {
			return protocol.Errorf("%v", err)
		}
		return &protocol.Response{Snippets: []store.Record{snip.Record()}}

	case protocol.OpUpdate:
		return d.handleUpdate(req)

	case protocol.OpDelete:
		snip, err := resolveID(d.st, req.ID)
		if err != nil {
			return protocol.Errorf("%v", err)
		}
		if err := d.st.Delete(snip.ID); err != nil {
			return protocol.Errorf("delete: %v", err)
		}
		return &protocol.Response{}

	case protocol.OpPin:
		snip, err := resolveID(d.st, req.ID)
		if err != nil {
			return protocol.Errorf("%v", err)
		}
		return &protocol.Response{Surface: d.reg.Pin(snip.ID)}

	case protocol.OpUnpin:
		d.reg.Unpin(req.Surface)
		return &protocol.Response{}

	case protocol.OpResolve:
		id, ok := d.reg.Resolve(req.Surface)
		if !ok {
			return protocol.Errorf("surface not pinned: %s", req.Surface)
		}
		return &protocol.Response{ID: id}

	case protocol.OpPins:
		return &protocol.Response{Pins: d.pinList()}

	case protocol.OpCopy:
		return d.handleCopy(req)

	case protocol.OpStatus:
		return d.handleStatus()

	default:
		return protocol.Errorf("unknown op %q", req.Op)
	}
}

func (d *daemon) handleAdd(req *protocol.Request) *protocol.Response {
	if req.Record != nil {
		dr, err := req.Record.Draft()
		if err != nil {
			return protocol.Errorf("record: %v", err)
		}
		label := req.Label
		if label == "" {
			label = req.Record.Label
		}
		snip, err := d.st.Insert(dr, label)
		if err != nil {
			return protocol.Errorf("insert: %v", err)
		}
		return &protocol.Response{Snippets: []store.Record{snip.Record()}}
	}

	rec, err := addDirect(d.st, req.Text, req.Label)
	if err != nil {
		return protocol.Errorf("add: %v", err)
	}
	return &protocol.Response{Snippets: []store.Record{rec}}
}

func (d *daemon) handleUpdate(req *protocol.Request) *protocol.Response {
	snip, err := resolveID(d.st, req.ID)
	if err != nil {
		return protocol.Errorf("%v", err)
	}
	var p store.Patch
	p.Label = req.NewLabel
	if req.Record != nil {
		dr, err := req.Record.Draft()
		if err != nil {
			return protocol.Errorf("record: %v", err)
		}
		p.Payload = &dr
	}
	snip, err = d.st.Update(snip.ID, p)
	if err != nil {
		return protocol.Errorf("update: %v", err)
	}
	return &protocol.Response{Snippets: []store.Record{snip.Record()}}
}

func (d *daemon) handleCopy(req *protocol.Request) *protocol.Response {
	if d.watcher == nil || !d.watcher.Available() {
		return protocol.Errorf("no system clipboard available")
	}
	snip, err := resolveID(d.st, req.ID)
	if err != nil {
		return protocol.Errorf("%v", err)
	}
	d.watcher.Write(snip.Payload())
	return &protocol.Response{Snippets: []store.Record{snip.Record()}}
}

func (d *daemon) handleStatus() *protocol.Response {
	info, err := localStatus(d.st, d.dbPath)
	if err != nil {
		return protocol.Errorf("status: %v", err)
	}
	info.Pins = len(d.reg.Surfaces())
	info.Clipboard = d.watcher != nil && d.watcher.Available()
	return &protocol.Response{Status: info}
}

func (d *daemon) pinList() []protocol.PinInfo {
	surfaces := d.reg.Surfaces()
	keys := make([]string, 0, len(surfaces))
	for k := range surfaces {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]protocol.PinInfo, 0, len(keys))
	for _, k := range keys {
		out = append(out, protocol.PinInfo{Surface: k, SnippetID: surfaces[k]})
	}
	return out
}
