package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"ds-clean/internal/config"
	"ds-clean/internal/database"
	"ds-clean/internal/exitcodes"
)

const dateLayout = "2006-01-02"

func main() {
	dbPath := flag.String("db", config.DefaultDatabasePath, "Path to removal history database")
	recent := flag.Int("recent", 0, "Show N most recent removals")
	stats := flag.Bool("stats", false, "Show removal statistics")
	action := flag.String("action", "", "Filter by action (DELETE, SKIP, ERROR)")
	pathPattern := flag.String("path", "", "Filter by path pattern (SQL LIKE syntax)")
	largest := flag.Int("largest", 0, "Show N largest removals")
	from := flag.String("from", "", "Show removals from this date (YYYY-MM-DD)")
	to := flag.String("to", "", "End date for -from (YYYY-MM-DD, default: now)")
	days := flag.Int("days", 30, "Number of days for statistics (default: 30)")
	prune := flag.Int("prune", 0, "Delete records older than N days and compact the database")
	jsonOutput := flag.Bool("json", false, "Output in JSON format")
	flag.Parse()

	db, err := openHistory(*dbPath)
	if err != nil {
		log.Printf("ERROR: Failed to open database: %v", err)
		os.Exit(exitcodes.RuntimeError)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("ERROR: Failed to close database: %v", err)
		}
	}()

	out := os.Stdout
	switch {
	case *prune > 0:
		err = pruneRecords(out, db, *prune)
	case *stats:
		err = showStats(out, db, *days, *jsonOutput)
	case *recent > 0:
		err = showRecords(out, "", *jsonOutput)(db.GetRecentRemovals(*recent))
	case *action != "":
		err = showRecords(out, fmt.Sprintf("Records with action: %s", *action), *jsonOutput)(db.GetRemovalsByAction(*action))
	case *pathPattern != "":
		err = showRecords(out, fmt.Sprintf("Removals matching path pattern: %s", *pathPattern), *jsonOutput)(db.GetRemovalsByPath(*pathPattern))
	case *largest > 0:
		err = showRecords(out, fmt.Sprintf("Largest %d removals:", *largest), *jsonOutput)(db.GetLargestRemovals(*largest))
	case *from != "":
		var start, end time.Time
		start, end, err = parseRange(*from, *to)
		if err == nil {
			title := fmt.Sprintf("Removals from %s to %s", start.Format(dateLayout), end.Format(dateLayout))
			err = showRecords(out, title, *jsonOutput)(db.GetRemovalsByDateRange(start, end))
		}
	default:
		flag.Usage()
		fmt.Println("\nExamples:")
		fmt.Println("  ds_clean_query -recent 10             # Show 10 most recent removals")
		fmt.Println("  ds_clean_query -stats -days 7         # Show statistics for the last week")
		fmt.Println("  ds_clean_query -action ERROR          # Show failed removals")
		fmt.Println("  ds_clean_query -path '/srv/share/%'   # Show removals below /srv/share")
		fmt.Println("  ds_clean_query -largest 10            # Show 10 largest removals")
		fmt.Println("  ds_clean_query -from 2026-01-01       # Show removals since a date")
		fmt.Println("  ds_clean_query -prune 90              # Drop records older than 90 days")
		os.Exit(exitcodes.InvalidConfig)
	}

	if err != nil {
		log.Printf("ERROR: %v", err)
		os.Exit(exitcodes.RuntimeError)
	}
}

// openHistory opens an existing history database; it never creates one
func openHistory(path string) (*database.RemovalDB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return database.NewRemovalDB(path)
}

// parseRange parses -from/-to; the end date is inclusive
func parseRange(from, to string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(dateLayout, from, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid -from date: %w", err)
	}
	end := time.Now()
	if to != "" {
		end, err = time.ParseInLocation(dateLayout, to, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -to date: %w", err)
		}
		end = end.Add(24*time.Hour - time.Nanosecond)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("-to %s is before -from %s", to, from)
	}
	return start, end, nil
}

func pruneRecords(w io.Writer, db *database.RemovalDB, days int) error {
	n, err := db.DeleteOldRecords(days)
	if err != nil {
		return fmt.Errorf("failed to delete old records: %w", err)
	}
	if err := db.Vacuum(); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	fmt.Fprintf(w, "Deleted %d records older than %d days\n", n, days)
	return nil
}

func showStats(w io.Writer, db *database.RemovalDB, days int, jsonOutput bool) error {
	stats, err := db.GetRemovalStats(days)
	if err != nil {
		return fmt.Errorf("failed to get statistics: %w", err)
	}

	if jsonOutput {
		return writeJSON(w, stats)
	}

	fmt.Fprintf(w, "Removal Statistics (Last %d days)\n", days)
	fmt.Fprintf(w, "Period: %s to %s\n\n", stats.StartDate.Format(dateLayout), stats.EndDate.Format(dateLayout))
	fmt.Fprintf(w, "Total Removed:    %d\n", stats.TotalRemoved)
	fmt.Fprintf(w, "Total Skipped:    %d\n", stats.TotalSkipped)
	fmt.Fprintf(w, "Total Errors:     %d\n", stats.TotalErrors)
	fmt.Fprintf(w, "Space Freed:      %s\n", formatBytes(stats.BytesRemoved))

	if len(stats.ByRoot) > 0 {
		roots := make([]string, 0, len(stats.ByRoot))
		for root := range stats.ByRoot {
			roots = append(roots, root)
		}
		sort.Strings(roots)

		fmt.Fprintln(w, "\nBy Root:")
		for _, root := range roots {
			fmt.Fprintf(w, "  %-30s %d\n", root, stats.ByRoot[root])
		}
	}
	return nil
}

// showRecords adapts a query result to printing, so each mode is one line in main
func showRecords(w io.Writer, title string, jsonOutput bool) func([]database.RemovalRecord, error) error {
	return func(records []database.RemovalRecord, err error) error {
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		if jsonOutput {
			return writeJSON(w, records)
		}
		if title != "" {
			fmt.Fprintf(w, "%s\n\n", title)
		}
		printRecords(w, records)
		return nil
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printRecords(w io.Writer, records []database.RemovalRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No records found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTimestamp\tAction\tSize\tPath\tError")
	_, _ = fmt.Fprintln(tw, "--\t---------\t------\t----\t----\t-----")

	for _, r := range records {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Timestamp.Format("2006-01-02 15:04:05"), r.Action, formatBytes(r.Size), r.Path, r.ErrorMessage)
	}
	_ = tw.Flush()
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
