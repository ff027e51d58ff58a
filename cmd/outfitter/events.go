package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/abelbrown/outfitter/internal/otel"
	"github.com/spf13/cobra"
)

func newEventsCmd(e *env) *cobra.Command {
	var (
		tail    int
		follow  bool
		rawJSON bool
		logPath string
		level   string
		filter  otel.Filter
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the JSONL event log",
		Example: `  outfitter events --tail 20
  outfitter events --kind search --level warn
  outfitter events -f`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if logPath == "" {
				logPath = e.cfg.EventLogPath()
			}
			filter.MinLevel = otel.Level(level)

			f, err := os.Open(logPath)
			if err != nil {
				return fmt.Errorf("event log not found at %s (run the interactive UI first): %w", logPath, err)
			}
			defer f.Close()

			out := cmd.OutOrStdout()
			show := func(l otel.Line) {
				if rawJSON {
					fmt.Fprintln(out, string(l.Raw))
					return
				}
				fmt.Fprintln(out, otel.Format(l.Event))
			}

			if tail <= 0 && follow {
				if _, err := f.Seek(0, io.SeekEnd); err != nil {
					return fmt.Errorf("seek event log: %w", err)
				}
			}
			lines, err := otel.ReadTail(f, tail, filter)
			if err != nil {
				return err
			}
			for _, l := range lines {
				show(l)
			}

			if !follow {
				return nil
			}
			return otel.Follow(cmd.Context(), f, filter, 100*time.Millisecond, show)
		},
	}

	fl := cmd.Flags()
	fl.IntVarP(&tail, "tail", "n", 50, "number of recent events to show")
	fl.BoolVarP(&follow, "follow", "f", false, "keep printing new events")
	fl.BoolVar(&rawJSON, "json", false, "print raw JSON lines")
	fl.StringVar(&logPath, "log", "", "event log path (default from config)")
	fl.StringVar(&filter.KindPrefix, "kind", "", "only kinds with this prefix, e.g. search")
	fl.StringVar(&level, "level", "", "minimum level: debug, info, warn, error")
	fl.StringVar(&filter.Comp, "comp", "", "only this component")
	fl.Uint64Var(&filter.Seq, "seq", 0, "only events for this request sequence")
	return cmd
}
