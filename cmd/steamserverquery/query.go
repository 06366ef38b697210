package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strconv"
	"text/tabwriter"

	"github.com/mmichaels01/steamserverquery/internal/config"
	"github.com/mmichaels01/steamserverquery/internal/game"
	"github.com/mmichaels01/steamserverquery/pkg/a2s"
)

type queryResult struct {
	Info    *a2s.Info    `json:"info"`
	Players []a2s.Player `json:"players,omitempty"`
}

// runQuery queries one server and prints the result to w.
func runQuery(w io.Writer, q config.Query, opts config.A2S) error {
	host, portStr, err := net.SplitHostPort(q.Address)
	if err != nil {
		return err
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port %q: %w", portStr, err)
	}

	var res queryResult
	if res.Info, err = game.QueryInfo(host, port, opts); err != nil {
		return err
	}

	if q.Players {
		if res.Players, err = game.QueryPlayers(host, port, opts); err != nil {
			return err
		}
	}

	if q.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	return printResult(w, res, q.Players)
}

func printResult(w io.Writer, res queryResult, withPlayers bool) error {
	info := res.Info
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(tw, "Name:\t%s\n", info.Name)
	_, _ = fmt.Fprintf(tw, "Map:\t%s\n", info.Map)
	_, _ = fmt.Fprintf(tw, "Game:\t%s (%s, app %d)\n", info.Game, info.Folder, info.AppID)
	_, _ = fmt.Fprintf(tw, "Players:\t%d/%d (%d bots)\n", info.Players, info.MaxPlayers, info.Bots)
	_, _ = fmt.Fprintf(tw, "Server:\t%s, %s, %s, VAC %s\n", info.ServerType, info.Environment, info.Visibility, info.VAC)
	_, _ = fmt.Fprintf(tw, "Version:\t%s\n", info.Version)
	if info.EDF.Has(a2s.EDFPort) {
		_, _ = fmt.Fprintf(tw, "Game port:\t%d\n", info.Port)
	}
	if info.EDF.Has(a2s.EDFKeywords) {
		_, _ = fmt.Fprintf(tw, "Keywords:\t%s\n", info.Keywords)
	}

	if withPlayers {
		_, _ = fmt.Fprintf(tw, "\n#\tName\tScore\tTime\n")
		for i, p := range res.Players {
			_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", i+1, p.Name, p.Score, p.Connected().Truncate(1e9))
		}
	}

	return tw.Flush()
}
