package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/mapmedia/mapview/internal/api"
	"github.com/mapmedia/mapview/internal/interaction"
	"github.com/mapmedia/mapview/internal/model/core"
)

// runQuery implements "mapview query": it asks a running viewer which
// markers a filter state shows.
func runQuery(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("query", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	serverURL := fs.String("server", "http://localhost:8001", "viewer base URL")
	kinds := fs.StringSlice("kinds", nil, "active kinds (default all): image, video, event-A, event-B, other")
	from := fs.String("from", "", "range start, RFC3339 or wall-clock YYYY-MM-DDTHH:MM[:SS] in the view's zone")
	to := fs.String("to", "", "range end, RFC3339 or wall-clock YYYY-MM-DDTHH:MM[:SS] in the view's zone")
	search := fs.String("search", "", "title/description search")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 1
	}

	client := api.New(*serverURL)
	if err := client.Healthcheck(ctx); err != nil {
		fmt.Fprintf(stderr, "viewer not reachable at %s: %v\n", *serverURL, err)
		return 1
	}

	loc := time.UTC
	if isWall(*from) || isWall(*to) {
		view, err := client.View(ctx)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		if loc, err = interaction.LoadZone(view.Timezone); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}

	state, err := queryState(*kinds, *from, *to, *search, loc)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	res, err := client.Visibility(ctx, state)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

// queryState builds a filter state from command-line values. Bounds without
// an offset are wall-clock times in loc.
func queryState(kinds []string, from, to, search string, loc *time.Location) (interaction.State, error) {
	state := interaction.DefaultState()
	state.SearchQuery = search

	if len(kinds) > 0 {
		state.ActiveKinds = state.ActiveKinds[:0:0]
		for _, name := range kinds {
			k, ok := core.ParseKind(name)
			if !ok {
				return state, fmt.Errorf("unknown kind %q", strings.TrimSpace(name))
			}
			state.ActiveKinds = append(state.ActiveKinds, k)
		}
	}

	var err error
	if state.TimeRange.Start, err = parseBound(from, loc); err != nil {
		return state, fmt.Errorf("--from: %w", err)
	}
	if state.TimeRange.End, err = parseBound(to, loc); err != nil {
		return state, fmt.Errorf("--to: %w", err)
	}
	if !state.TimeRange.Valid() {
		return state, interaction.ErrInvalidTimeRange
	}
	return state.Normalize(), nil
}

func parseBound(s string, loc *time.Location) (*time.Time, error) {
	if s == "" || isWall(s) {
		return interaction.ParseWall(s, loc)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// isWall reports whether s is a bound without an offset.
func isWall(s string) bool {
	if s == "" {
		return false
	}
	_, err := time.Parse(time.RFC3339, s)
	return err != nil
}
