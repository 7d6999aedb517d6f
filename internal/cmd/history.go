package cmd

import (
	"fmt"
	"io"

	"github.com/commitsmith/commitsmith/internal/pkg/history"
)

// printHistory writes the most recent accepted messages, newest first.
func printHistory(w io.Writer, mgr history.Manager) error {
	entries, err := mgr.Recent(history.DefaultRecent)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No history entries found.")
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(w, "%s  %-10s  %s\n", e.Timestamp.Local().Format("2006-01-02 15:04"), status(e), e.Header())
		fmt.Fprintf(w, "                  %s/%s", e.Provider, e.Model)
		if e.Revisions > 0 {
			fmt.Fprintf(w, ", %d revision(s)", e.Revisions)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// status summarizes what happened to an entry's message.
func status(e *history.Entry) string {
	s := "printed"
	if e.Committed {
		s = "committed"
	}
	if e.Pushed {
		s += "+pushed"
	}
	return s
}
