package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.klb.dev/shard/internal/store"
)

// resolveID looks a snippet up by full ID or unambiguous ID prefix.
func resolveID(st *store.Store, id string) (store.Snippet, error) {
	snip, err := st.Get(id)
	if err == nil {
		return snip, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return store.Snippet{}, err
	}

	all, err := st.List(store.Filter{})
	if err != nil {
		return store.Snippet{}, err
	}
	var hits []store.Snippet
	for _, s := range all {
		if strings.HasPrefix(s.ID, id) {
			hits = append(hits, s)
		}
	}
	switch len(hits) {
	case 0:
		return store.Snippet{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	case 1:
		return hits[0], nil
	default:
		return store.Snippet{}, fmt.Errorf("ambiguous id prefix %q (%d matches)", id, len(hits))
	}
}

// readInput returns the joined args, or all of stdin when no args are given.
func readInput(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func fmtAge(t time.Time) string {
	age := time.Since(t).Round(time.Second)
	if age < time.Minute {
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	}
	if age < time.Hour {
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	}
	if age < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	}
	return t.Format("2006-01-02")
}

// shortID truncates an ID for table output.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
