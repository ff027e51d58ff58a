package main

import (
	"fmt"

	"github.com/abelbrown/outfitter/internal/catalog"
	"github.com/abelbrown/outfitter/internal/config"
	"github.com/abelbrown/outfitter/internal/otel"
	"github.com/abelbrown/outfitter/internal/session"
	"github.com/spf13/cobra"
)

// flags holds persistent flag values shared by every subcommand.
type flags struct {
	configPath string
	baseURL    string
	ordering   string
	trace      bool
}

// env is what a subcommand needs after flags and config are resolved.
type env struct {
	cfg      *config.Config
	ordering session.Ordering
}

func newRootCmd() *cobra.Command {
	var f flags
	e := &env{}

	root := &cobra.Command{
		Use:   "outfitter",
		Short: "Search a clothing catalog and browse recommendations",
		Long: `outfitter talks to a catalog service exposing /search and /recommend.

Without a subcommand it starts the interactive terminal UI: type a query,
press enter to search, tab into the results and press enter on a product
to fetch similar items.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.load(f)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, e)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "config file (default $"+config.PathEnv+" or ~/.outfitter/config.yaml)")
	pf.StringVar(&f.baseURL, "base-url", "", "catalog service URL, overrides config")
	pf.StringVar(&f.ordering, "ordering", "", "overlapping responses: latest or last-response")
	pf.BoolVar(&f.trace, "trace", false, "record every UI message in the event log")

	root.AddCommand(newSearchCmd(e), newRecommendCmd(e), newEventsCmd(e))
	return root
}

// load resolves configuration: file and environment first, then flags.
func (e *env) load(f flags) error {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if f.baseURL != "" {
		cfg.Catalog.BaseURL = f.baseURL
	}
	if f.ordering != "" {
		cfg.Session.Ordering = f.ordering
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ordering, err := session.ParseOrdering(cfg.Session.Ordering)
	if err != nil {
		return err
	}
	if f.trace {
		otel.SetTraceEnabled(true)
	}

	e.cfg = cfg
	e.ordering = ordering
	return nil
}

// client builds a catalog client from the resolved configuration.
func (e *env) client() (*catalog.Client, error) {
	c := e.cfg.Catalog
	client, err := catalog.NewClient(catalog.Options{
		BaseURL:           c.BaseURL,
		Timeout:           c.Timeout,
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.Burst,
		Breaker: catalog.BreakerSettings{
			FailureThreshold: c.Breaker.FailureThreshold,
			OpenTimeout:      c.Breaker.OpenTimeout,
			HalfOpenRequests: c.Breaker.HalfOpenRequests,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("catalog client: %w", err)
	}
	return client, nil
}
