// Package cmdlog pretty-prints wire traffic during interactive instrument
// bring-up, coloring commands and responses so a scrolling session stays
// readable.
package cmdlog

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gotmc/scpi"
)

var (
	CmdStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	RespStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
	HexStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
)

func isASCII(s string) bool {
	return !strings.ContainsFunc(s, func(r rune) bool {
		switch {
		case r < 7:
			return true
		case r > 6 && r < 14:
			return false
		case r > 13 && r < 32:
			return true
		case r > 127:
			return true
		}
		return false
	})
}

// PrettyFuncs returns query, bquery, and cmd closures over the adapter.
// query returns the raw response; bquery logs the response, switching to a
// hex dump when it is not printable; cmd sends a command and logs the
// outcome.
func PrettyFuncs(a scpi.Adapter) (
	query func(string) string,
	bquery func(string),
	cmd func(string),
) {
	query = func(q string) string {
		s, err := a.Query(q)
		if err != nil {
			log.Printf("query %s: error %s", CmdStyle.Render(q), err)
		}
		return s
	}
	bquery = func(q string) {
		s := query(q)
		styled := CmdStyle.Render(q)
		s = strings.TrimSuffix(s, "\n")
		if len(s) == 0 {
			log.Print(RespStyle.Render("<no response>"))
			return
		}
		switch {
		case isASCII(s):
			log.Printf("%s: [%d] %q", styled, len(s), s)
		case len(s) < 32:
			log.Printf("%s: [%d] %q (% 2x)", styled, len(s), s, []byte(s))
		default:
			log.Printf("%s: [%d] %s", styled, len(s), HexStyle.Render(fmt.Sprintf("% 2x", []byte(s))))
		}
	}
	cmd = func(c string) {
		if err := a.Write(c); err != nil {
			log.Printf("cmd %s: error %s", CmdStyle.Render(c), err)
		} else {
			log.Printf("%s()", CmdStyle.Render(c))
		}
	}
	return query, bquery, cmd
}
