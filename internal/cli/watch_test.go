package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitForFile(t *testing.T, path string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("%s was not written", path)
}

func TestWatchRebuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	input := writeSample(t, dir, "graph.json")
	output := filepath.Join(dir, "graph.svg")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs([]string{"bundle", input, "--watch", "--no-cache", "--iterations", "3"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	waitForFile(t, output)
	if err := os.Remove(output); err != nil {
		t.Fatal(err)
	}

	// Rewrite the input; the watcher should produce the output again.
	data, err := os.ReadFile(input)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(input, data, 0o644); err != nil {
		t.Fatal(err)
	}
	waitForFile(t, output)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatchRejectsStreams(t *testing.T) {
	for _, in := range []string{"-", "https://example.com/graph.json"} {
		if err := runCLI(t, "bundle", in, "--watch", "--no-cache"); err == nil {
			t.Errorf("watching %s accepted", in)
		}
	}
}
