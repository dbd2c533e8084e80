package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/DanielleFiene/redditmini/internal/store"
)

func runJournal() {
	fs := flag.NewFlagSet("journal", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config.json")
	limit := fs.Int("n", 20, "Number of recent exchanges to show")
	since := fs.Duration("since", 24*time.Hour, "Window for per-host stats")
	failed := fs.Bool("failed", false, "Only show failed exchanges")
	rawJSON := fs.Bool("json", false, "Output JSON")
	fs.Parse(os.Args[1:])

	cfg := loadConfig(*configPath)
	if _, err := os.Stat(cfg.Journal.Path); err != nil {
		fmt.Fprintf(os.Stderr, "error: no journal at %s\n", cfg.Journal.Path)
		fmt.Fprintln(os.Stderr, "  Set journal.enabled (or REDDITMINI_JOURNAL=true) and run redditmini first.")
		os.Exit(1)
	}

	st, err := store.Open(cfg.Journal.Path)
	if err != nil {
		log.Fatalf("failed to open journal: %v", err)
	}
	defer st.Close()

	total, _ := st.Count()
	entries, err := st.Recent(*limit)
	if err != nil {
		log.Fatalf("failed to read journal: %v", err)
	}
	if *failed {
		kept := entries[:0]
		for _, e := range entries {
			if e.Failed() {
				kept = append(kept, e)
			}
		}
		entries = kept
	}
	stats, err := st.Stats(time.Now().Add(-*since))
	if err != nil {
		log.Fatalf("failed to aggregate journal: %v", err)
	}

	if *rawJSON {
		if err := printJSON(os.Stdout, map[string]any{"total": total, "recent": entries, "hosts": stats}); err != nil {
			log.Fatal(err)
		}
		return
	}

	fmt.Printf("Journal:   %s\n", cfg.Journal.Path)
	fmt.Printf("Entries:   %d\n\n", total)

	fmt.Printf("Hosts (last %s):\n", *since)
	hosts := newTable("HOST", "REQUESTS", "FAILED", "AVG ms", "MAX ms")
	for _, h := range stats {
		hosts.Row(h.Host, fmt.Sprint(h.Requests), fmt.Sprint(h.Failures), fmt.Sprintf("%.1f", h.AvgMs), fmt.Sprintf("%.1f", h.MaxMs))
	}
	fmt.Println(hosts)

	fmt.Printf("\nRecent:\n")
	recent := newTable("AT", "STATUS", "PATH", "DUR", "ERROR")
	for _, e := range entries {
		status := fmt.Sprint(e.Status)
		if e.Status == 0 {
			status = "---"
		}
		recent.Row(
			e.At.Local().Format("01-02 15:04:05"),
			status,
			truncate(e.Host+e.Path, 60),
			fmt.Sprintf("%dms", e.Dur.Milliseconds()),
			truncate(e.Err, 50),
		)
	}
	fmt.Println(recent)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderColumn(false).
		Headers(headers...)
}
