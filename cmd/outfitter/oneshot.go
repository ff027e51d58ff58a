package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/abelbrown/outfitter/internal/catalog"
	"github.com/abelbrown/outfitter/internal/session"
	"github.com/abelbrown/outfitter/internal/ui"
	"github.com/abelbrown/outfitter/internal/view"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// printOptions are the output flags shared by search and recommend.
type printOptions struct {
	json        bool
	checkImages bool
	width       int
}

func (o *printOptions) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.json, "json", false, "print the products as JSON")
	cmd.Flags().BoolVar(&o.checkImages, "check-images", false, "probe image locators and show the fallback for broken ones")
	cmd.Flags().IntVar(&o.width, "width", 100, "output width")
}

func newSearchCmd(e *env) *cobra.Command {
	var opts printOptions
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog and print the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := e.client()
			if err != nil {
				return err
			}

			s := session.New(e.ordering)
			s.SetQuery(strings.Join(args, " "))
			t, ok := s.SubmitSearch()
			if !ok {
				return catalog.ErrEmptyQuery
			}
			products, err := client.Search(cmd.Context(), t.Subject)
			if err != nil {
				s.Fail(t)
				return err
			}
			s.ApplySearch(t, products)

			return printSnapshot(cmd.Context(), cmd.OutOrStdout(), client, s.Snapshot(), products, e.cfg.UI.FallbackImage, opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

func newRecommendCmd(e *env) *cobra.Command {
	var opts printOptions
	cmd := &cobra.Command{
		Use:   "recommend <product-id>",
		Short: "Print the products most similar to a catalog product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := e.client()
			if err != nil {
				return err
			}
			id := catalog.ProductID(strings.TrimSpace(args[0]))
			products, err := client.Recommend(cmd.Context(), id)
			if err != nil {
				return err
			}
			snap := session.Snapshot{Recommendations: products, Selected: id}
			return printSnapshot(cmd.Context(), cmd.OutOrStdout(), client, snap, products, e.cfg.UI.FallbackImage, opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

// probeConcurrency bounds simultaneous image probes.
const probeConcurrency = 4

// probeImages checks every distinct image locator and returns the ones that
// failed to load.
func probeImages(ctx context.Context, client *catalog.Client, products []catalog.Product) view.FailedImages {
	var (
		mu     sync.Mutex
		failed = view.FailedImages{}
		seen   = make(map[string]bool)
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)
	for _, p := range products {
		if seen[p.Image] {
			continue
		}
		seen[p.Image] = true
		locator := p.Image
		g.Go(func() error {
			if err := client.ProbeImage(ctx, locator); err != nil {
				mu.Lock()
				failed[locator] = true
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return failed
}

func printSnapshot(ctx context.Context, w io.Writer, client *catalog.Client, snap session.Snapshot, products []catalog.Product, fallback string, opts printOptions) error {
	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(products)
	}

	failed := view.FailedImages{}
	if opts.checkImages {
		failed = probeImages(ctx, client, products)
	}

	plan := view.Project(snap, failed, view.Options{FallbackImage: fallback})
	rows := len(products) + 2
	switch {
	case plan.Results.Visible:
		fmt.Fprint(w, ui.RenderSection(plan.Results, -1, "", opts.width, rows))
	case plan.Recommendations.Visible:
		fmt.Fprint(w, ui.RenderSection(plan.Recommendations, -1, "", opts.width, rows))
	default:
		fmt.Fprintln(w, "no products found")
	}
	return nil
}
