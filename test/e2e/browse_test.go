package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	expect "github.com/Netflix/go-expect"
	"github.com/creack/pty"
)

func TestE2E_SearchAndRecommend(t *testing.T) {
	bin := buildOutfitter(t)
	srv := fixtureCatalog(t)
	home := t.TempDir()

	cmd := exec.Command(bin)
	cmd.Env = append(os.Environ(),
		"HOME="+home,
		"OUTFITTER_CONFIG=",
		"OUTFITTER_CATALOG_BASE_URL="+srv.URL,
	)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		t.Fatalf("failed to start pty: %v", err)
	}
	defer func() {
		_ = ptmx.Close()
		_ = cmd.Process.Kill()
	}()
	if err := pty.Setsize(ptmx, &pty.Winsize{Cols: 120, Rows: 40}); err != nil {
		t.Fatalf("failed to set pty size: %v", err)
	}

	var screen bytes.Buffer
	console, err := expect.NewConsole(
		expect.WithStdin(ptmx),
		expect.WithStdout(&screen),
		expect.WithDefaultTimeout(5*time.Second),
	)
	if err != nil {
		t.Fatalf("failed to create console: %v", err)
	}
	defer console.Close()

	step := func(name, want string) {
		t.Helper()
		if _, err := console.ExpectString(want); err != nil {
			t.Fatalf("%s: %q not found: %v\nScreen:\n%s", name, want, err, screen.String())
		}
	}
	send := func(s string) {
		t.Helper()
		if _, err := console.Send(s); err != nil {
			t.Fatalf("send %q: %v", s, err)
		}
	}

	step("startup", "Type a query")

	send("shirt")
	send("\r")
	step("search", "2 items found")
	step("search", "Navy Blue Shirt")

	send("\t")
	send("\r")
	step("recommend", "Recommended For You")
	step("recommend", "Grey Polo Shirt")
	step("image fallback", "/fallback.jpg")

	send("\x03")
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("process did not exit after ctrl+c")
	}

	if srv.Hits("/search") != 1 || srv.Hits("/recommend") != 1 {
		t.Errorf("hits: search=%d recommend=%d", srv.Hits("/search"), srv.Hits("/recommend"))
	}

	events, err := os.ReadFile(filepath.Join(home, ".outfitter", "events.jsonl"))
	if err != nil {
		t.Fatalf("event log: %v", err)
	}
	for _, kind := range []string{"sys.startup", "search.complete", "recommend.complete", "image.fallback", "sys.shutdown"} {
		if !strings.Contains(string(events), `"kind":"`+kind+`"`) {
			t.Errorf("event log missing %s:\n%s", kind, events)
		}
	}
}
