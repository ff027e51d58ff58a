// Package e2e drives the outfitter binary through a pseudo-terminal against
// an in-process catalog service.
package e2e

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/abelbrown/outfitter/internal/catalog/catalogtest"
)

// buildOutfitter compiles cmd/outfitter into a temp dir and returns its path.
func buildOutfitter(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("e2e: skipped in -short mode")
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	root := filepath.Join(wd, "..", "..")

	bin := filepath.Join(t.TempDir(), "outfitter")
	cmd := exec.Command("go", "build", "-o", bin, "./cmd/outfitter")
	cmd.Dir = root
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build failed: %v\n%s", err, out)
	}
	return bin
}

// fixtureCatalog serves a few shirts, one with recommendations.
func fixtureCatalog(t *testing.T) *catalogtest.Server {
	srv := catalogtest.NewServer(t,
		catalogtest.Product("15970", "Navy Blue Shirt", "Apparel", "Navy Blue"),
		catalogtest.Product("39386", "Red Check Shirt", "Apparel", "Red"),
		catalogtest.Product("59263", "Silver Watch", "Accessories", "Silver"),
	)
	srv.SetRecommendations("15970",
		catalogtest.Product("21379", "Black Denim Shirt", "Apparel", "Black"),
		catalogtest.Product("53759", "Grey Polo Shirt", "Apparel", "Grey"),
	)
	srv.MissingImage("53759")
	return srv
}
