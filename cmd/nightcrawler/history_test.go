package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/nightcrawler/internal/database"
	"github.com/nao1215/nightcrawler/internal/model"
)

// TestNewHistoryCmd tests the history command creation.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "history" {
			t.Errorf("expected use 'history', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has limit flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("limit")
		if flag == nil {
			t.Fatal("expected limit flag")
		}
		if flag.Shorthand != "l" {
			t.Errorf("expected shorthand 'l', got %q", flag.Shorthand)
		}
		if flag.DefValue != "20" {
			t.Errorf("expected default '20', got %q", flag.DefValue)
		}
	})

	t.Run("has id flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("id") == nil {
			t.Fatal("expected id flag")
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("json")
		if flag == nil {
			t.Fatal("expected json flag")
		}
		if flag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", flag.Shorthand)
		}
	})

	t.Run("takes no arguments", func(t *testing.T) {
		t.Parallel()
		if cmd.Args == nil {
			t.Error("expected Args validator")
		}
	})
}

// seedHistoryDB creates a temp database with a few saved runs.
func seedHistoryDB(t *testing.T) *database.CrawlDB {
	t.Helper()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	for i, seed := range []string{"https://a.example/", "https://b.example/"} {
		result := model.NewCrawlResult(
			[]string{seed},
			map[string]string{"Server": "nginx"},
			model.CrawlStats{PagesFetched: i + 1, URLsSeen: i + 1},
		)
		record := &model.RunRecord{
			SeedURL:      seed,
			StartedAt:    base.Add(time.Duration(i) * time.Minute),
			FinishedAt:   base.Add(time.Duration(i)*time.Minute + 30*time.Second),
			PagesFetched: i + 1,
			Result:       result,
		}
		if _, err := db.SaveRun(ctx, record); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
	}
	return db
}

// captureStdout runs fn and returns what it wrote to stdout.
func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fnErr := fn()

	_ = w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	_ = r.Close()

	if fnErr != nil {
		t.Fatalf("unexpected error: %v", fnErr)
	}
	return buf.String()
}

// TestListRuns tests the run listing output.
func TestListRuns(t *testing.T) {
	t.Run("lists runs newest first in a table", func(t *testing.T) {
		db := seedHistoryDB(t)

		output := captureStdout(t, func() error {
			return listRuns(context.Background(), db, 0, false)
		})

		if !strings.Contains(output, "SEED") {
			t.Errorf("expected table header, got %q", output)
		}
		aIdx := strings.Index(output, "https://a.example/")
		bIdx := strings.Index(output, "https://b.example/")
		if aIdx < 0 || bIdx < 0 {
			t.Fatalf("expected both seeds in output, got %q", output)
		}
		if bIdx > aIdx {
			t.Error("expected newest run (b.example) to be listed first")
		}
	})

	t.Run("reports empty history", func(t *testing.T) {
		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		output := captureStdout(t, func() error {
			return listRuns(context.Background(), db, 0, false)
		})

		if !strings.Contains(output, "No crawl runs") {
			t.Errorf("expected empty-history message, got %q", output)
		}
	})

	t.Run("outputs JSON summaries", func(t *testing.T) {
		db := seedHistoryDB(t)

		output := captureStdout(t, func() error {
			return listRuns(context.Background(), db, 0, true)
		})

		if !strings.Contains(output, `"seedUrl"`) {
			t.Errorf("expected JSON summary fields, got %q", output)
		}
		if strings.Contains(output, `"urls"`) {
			t.Error("listing should not include full results")
		}
	})
}

// TestShowRun tests printing a single saved run.
func TestShowRun(t *testing.T) {
	t.Run("shows full run by id", func(t *testing.T) {
		db := seedHistoryDB(t)

		output := captureStdout(t, func() error {
			return showRun(context.Background(), db, 1, false)
		})

		if !strings.Contains(output, "Run #1") {
			t.Errorf("expected run header, got %q", output)
		}
		if !strings.Contains(output, "https://a.example/") {
			t.Errorf("expected seed URL in output, got %q", output)
		}
		if !strings.Contains(output, "Server") {
			t.Errorf("expected aggregated headers in output, got %q", output)
		}
	})

	t.Run("returns error for unknown id", func(t *testing.T) {
		db := seedHistoryDB(t)

		if err := showRun(context.Background(), db, 999, false); err == nil {
			t.Error("expected error for unknown run id")
		}
	})
}

// TestSummarize tests the reduced JSON shape of listed runs.
func TestSummarize(t *testing.T) {
	t.Parallel()

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []*model.RunRecord{
		{
			ID:           7,
			SeedURL:      "https://example.com/",
			StartedAt:    started,
			FinishedAt:   started.Add(90 * time.Second),
			PagesFetched: 12,
			PagesFailed:  1,
		},
	}

	got := summarize(records)
	if len(got) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(got))
	}
	if got[0].ID != 7 {
		t.Errorf("expected ID 7, got %d", got[0].ID)
	}
	if got[0].Duration != "1m30s" {
		t.Errorf("expected duration '1m30s', got %q", got[0].Duration)
	}
	if got[0].PagesFetched != 12 || got[0].PagesFailed != 1 {
		t.Errorf("unexpected page counts: %+v", got[0])
	}
}
