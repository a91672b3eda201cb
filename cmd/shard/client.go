package main

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"go.klb.dev/shard/internal/classify"
	"go.klb.dev/shard/internal/clip"
	"go.klb.dev/shard/internal/ipc"
	"go.klb.dev/shard/internal/protocol"
	"go.klb.dev/shard/internal/store"
	"go.klb.dev/shard/internal/wire"
)

// errNoDaemon marks operations that only make sense against a running daemon
// (pins live in daemon memory, the clipboard belongs to the daemon process).
var errNoDaemon = errors.New("no shard daemon running (start one with \"shard serve\")")

// session is the data-plane handle used by every sub-command. If a daemon is
// listening on the IPC socket all operations go through it; otherwise the
// database is opened directly and operations that need daemon state fail
// with errNoDaemon.
type session struct {
	wc     *wire.Conn
	st     *store.Store
	dbPath string
}

// openSession connects to the local daemon when one is running, otherwise
// opens the snippet database directly.
func openSession(v *viper.Viper) (*session, error) {
	if ipc.IsRunning() {
		conn, err := ipc.Dial()
		if err == nil {
			return &session{wc: wire.New(conn, nil)}, nil
		}
		// Daemon vanished between probe and dial; fall through.
	}

	dbPath := v.GetString("db")
	if dbPath == "" {
		dbPath = store.DefaultPath()
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &session{st: st, dbPath: dbPath}, nil
}

func (s *session) Close() error {
	if s.wc != nil {
		return s.wc.Close()
	}
	return s.st.Close()
}

func (s *session) roundTrip(req *protocol.Request) (*protocol.Response, error) {
	if err := s.wc.WriteRequest(req); err != nil {
		return nil, fmt.Errorf("daemon request: %w", err)
	}
	resp, err := s.wc.ReadResponse()
	if err != nil {
		return nil, fmt.Errorf("daemon response: %w", err)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}

// add classifies text and stores it. Colors deduplicate: an existing snippet
// with the same value is bumped to the top instead of inserted again.
func (s *session) add(text, label string) (store.Record, error) {
	if s.wc != nil {
		resp, err := s.roundTrip(&protocol.Request{Op: protocol.OpAdd, Text: text, Label: label})
		if err != nil {
			return store.Record{}, err
		}
		return oneRecord(resp)
	}
	return addDirect(s.st, text, label)
}

// addRecord stores a pre-built record, bypassing classification.
func (s *session) addRecord(rec store.Record, label string) (store.Record, error) {
	if s.wc != nil {
		resp, err := s.roundTrip(&protocol.Request{Op: protocol.OpAdd, Record: &rec, Label: label})
		if err != nil {
			return store.Record{}, err
		}
		return oneRecord(resp)
	}
	d, err := rec.Draft()
	if err != nil {
		return store.Record{}, err
	}
	snip, err := s.st.Insert(d, label)
	if err != nil {
		return store.Record{}, err
	}
	return snip.Record(), nil
}

func (s *session) list(kind, query string) ([]store.Record, error) {
	if s.wc != nil {
		resp, err := s.roundTrip(&protocol.Request{Op: protocol.OpList, Kind: kind, Query: query})
		if err != nil {
			return nil, err
		}
		return resp.Snippets, nil
	}
	f, err := parseFilter(kind, query)
	if err != nil {
		return nil, err
	}
	snips, err := s.st.List(f)
	if err != nil {
		return nil, err
	}
	return records(snips), nil
}

func (s *session) get(id string) (store.Record, error) {
	if s.wc != nil {
		resp, err := s.roundTrip(&protocol.Request{Op: protocol.OpGet, ID: id})
		if err != nil {
			return store.Record{}, err
		}
		return oneRecord(resp)
	}
	snip, err := resolveID(s.st, id)
	if err != nil {
		return store.Record{}, err
	}
	return snip.Record(), nil
}

func (s *session) setLabel(id, label string) (store.Record, error) {
	if s.wc != nil {
		resp, err := s.roundTrip(&protocol.Request{Op: protocol.OpUpdate, ID: id, NewLabel: &label})
		if err != nil {
			return store.Record{}, err
		}
		return oneRecord(resp)
	}
	snip, err := resolveID(s.st, id)
	if err != nil {
		return store.Record{}, err
	}
	snip, err = s.st.Update(snip.ID, store.Patch{Label: &label})
	if err != nil {
		return store.Record{}, err
	}
	return snip.Record(), nil
}

func (s *session) remove(id string) error {
	if s.wc != nil {
		_, err := s.roundTrip(&protocol.Request{Op: protocol.OpDelete, ID: id})
		return err
	}
	snip, err := resolveID(s.st, id)
	if err != nil {
		return err
	}
	return s.st.Delete(snip.ID)
}

// copyToClipboard puts a snippet's payload on the system clipboard. With a
// daemon the daemon writes it (and suppresses re-capture); without one the
// CLI process writes it itself.
func (s *session) copyToClipboard(id string) (store.Record, error) {
	if s.wc != nil {
		resp, err := s.roundTrip(&protocol.Request{Op: protocol.OpCopy, ID: id})
		if err != nil {
			return store.Record{}, err
		}
		return oneRecord(resp)
	}
	snip, err := resolveID(s.st, id)
	if err != nil {
		return store.Record{}, err
	}
	w := clip.New()
	defer w.Close()
	if !w.Available() {
		return store.Record{}, errors.New("no system clipboard available")
	}
	w.Write(snip.Payload())
	return snip.Record(), nil
}

func (s *session) pin(id string) (string, error) {
	if s.wc == nil {
		return "", errNoDaemon
	}
	resp, err := s.roundTrip(&protocol.Request{Op: protocol.OpPin, ID: id})
	if err != nil {
		return "", err
	}
	return resp.Surface, nil
}

func (s *session) unpin(surface string) error {
	if s.wc == nil {
		return errNoDaemon
	}
	_, err := s.roundTrip(&protocol.Request{Op: protocol.OpUnpin, Surface: surface})
	return err
}

func (s *session) resolvePin(surface string) (string, error) {
	if s.wc == nil {
		return "", errNoDaemon
	}
	resp, err := s.roundTrip(&protocol.Request{Op: protocol.OpResolve, Surface: surface})
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (s *session) pins() ([]protocol.PinInfo, error) {
	if s.wc == nil {
		return nil, errNoDaemon
	}
	resp, err := s.roundTrip(&protocol.Request{Op: protocol.OpPins})
	if err != nil {
		return nil, err
	}
	return resp.Pins, nil
}

func (s *session) status() (*protocol.StatusInfo, error) {
	if s.wc != nil {
		resp, err := s.roundTrip(&protocol.Request{Op: protocol.OpStatus})
		if err != nil {
			return nil, err
		}
		return resp.Status, nil
	}
	return localStatus(s.st, s.dbPath)
}

// addDirect classifies and stores text against an open store. Shared by the
// direct CLI path and the daemon's request handler.
func addDirect(st *store.Store, text, label string) (store.Record, error) {
	d := classify.Classify(text)
	var (
		snip store.Snippet
		err  error
	)
	if d.Kind == classify.KindColor {
		snip, err = st.InsertOrBumpColor(d.Color, label)
	} else {
		snip, err = st.Insert(d, label)
	}
	if err != nil {
		return store.Record{}, err
	}
	return snip.Record(), nil
}

// localStatus builds status info from a directly-opened store.
func localStatus(st *store.Store, dbPath string) (*protocol.StatusInfo, error) {
	ver, err := st.Version()
	if err != nil {
		return nil, err
	}
	snips, err := st.List(store.Filter{})
	if err != nil {
		return nil, err
	}
	return &protocol.StatusInfo{
		Version:       Version,
		DBPath:        dbPath,
		SchemaVersion: ver,
		Snippets:      len(snips),
	}, nil
}

func oneRecord(resp *protocol.Response) (store.Record, error) {
	if len(resp.Snippets) == 0 {
		return store.Record{}, errors.New("daemon: empty response")
	}
	return resp.Snippets[0], nil
}

func records(snips []store.Snippet) []store.Record {
	out := make([]store.Record, len(snips))
	for i, s := range snips {
		out[i] = s.Record()
	}
	return out
}

func parseFilter(kind, query string) (store.Filter, error) {
	f := store.Filter{Query: query}
	if kind != "" {
		k, ok := classify.ParseKind(kind)
		if !ok {
			return store.Filter{}, fmt.Errorf("unknown kind %q (want color, code or text)", kind)
		}
		f.Kind = k
	}
	return f, nil
}
