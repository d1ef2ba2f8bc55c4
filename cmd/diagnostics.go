// file: cmd/diagnostics.go
// version: 2.0.0
// guid: c8f6a0d4-2a8b-48cf-9d08-02cc9915d9fc

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/pebble/v2"
	"github.com/jdfalk/newsdeck/internal/cache"
	"github.com/jdfalk/newsdeck/internal/config"
	"github.com/jdfalk/newsdeck/internal/database"
	"github.com/spf13/cobra"
)

var (
	diagnosticsCmd = &cobra.Command{
		Use:   "diagnostics",
		Short: "Debugging helpers",
		Long:  "Diagnostic utilities for inspecting the cache and the fallback database.",
	}

	cacheKeysCmd = &cobra.Command{
		Use:   "cache-keys",
		Short: "List cached keys per slot with their age",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheKeys(cmd.OutOrStdout(), config.AppConfig, time.Now())
		},
	}

	queryCmd = &cobra.Command{
		Use:   "query",
		Short: "Dump raw cache records",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			prefix, _ := cmd.Flags().GetString("prefix")
			return runDiagnosticsQuery(cmd.OutOrStdout(), config.AppConfig, limit, prefix)
		},
	}

	fallbackCmd = &cobra.Command{
		Use:   "fallback <cache-key>",
		Short: "Show a feed mirrored in the fallback database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFallbackLookup(cmd, config.AppConfig, args[0])
		},
	}
)

func init() {
	queryCmd.Flags().Int("limit", 5, "Number of records to display")
	queryCmd.Flags().String("prefix", "cache:", "Key prefix to inspect")

	diagnosticsCmd.AddCommand(cacheKeysCmd)
	diagnosticsCmd.AddCommand(queryCmd)
	diagnosticsCmd.AddCommand(fallbackCmd)
}

func runCacheKeys(w io.Writer, cfg config.Config, now time.Time) error {
	store, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return listCacheKeys(w, store, now)
}

// listCacheKeys prints every key of the known slots with its age and
// freshness against the slot TTL.
func listCacheKeys(w io.Writer, store *cache.Store, now time.Time) error {
	slots := []struct {
		name string
		ttl  time.Duration
	}{
		{cache.NewsSlot, cache.NewsTTL},
		{cache.WeatherSlot, cache.WeatherTTL},
		{cache.SportsSlot, cache.SportsTTL},
	}

	total := 0
	for _, s := range slots {
		slot := cache.NewSlot[json.RawMessage](store, s.name, s.ttl)
		keys, err := slot.Keys()
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", s.name, err)
		}
		fmt.Fprintf(w, "%s (ttl %v): %d keys\n", s.name, s.ttl, len(keys))
		for _, key := range keys {
			entry, ok := slot.ReadStale(key)
			if !ok {
				fmt.Fprintf(w, "  %-32s unreadable\n", key)
				continue
			}
			state := "stale"
			if entry.Fresh(now, s.ttl) {
				state = "fresh"
			}
			fmt.Fprintf(w, "  %-32s %-5s age %v\n", key, state, now.Sub(entry.StoredAt).Round(time.Second))
		}
		total += len(keys)
	}
	if total == 0 {
		fmt.Fprintln(w, "Cache is empty.")
	}
	return nil
}

func runDiagnosticsQuery(w io.Writer, cfg config.Config, limit int, prefix string) error {
	if limit <= 0 {
		return errors.New("limit must be positive")
	}
	if cfg.CacheBackend != "pebble" {
		return fmt.Errorf("raw inspection is only available for the Pebble cache")
	}

	db, err := pebble.Open(cfg.CachePath, &pebble.Options{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to open Pebble database: %w", err)
	}
	defer db.Close()

	iterOpts := &pebble.IterOptions{}
	if prefix != "" {
		iterOpts.LowerBound = []byte(prefix)
		iterOpts.UpperBound = append([]byte(prefix), 0xFF)
	}

	iter, err := db.NewIter(iterOpts)
	if err != nil {
		return fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	count := 0
	for ok := iter.First(); ok && iter.Valid(); ok = iter.Next() {
		fmt.Fprintf(w, "Key: %s\n", string(iter.Key()))
		val := iter.Value()
		fmt.Fprintf(w, "Value length: %d bytes\n", len(val))
		fmt.Fprintf(w, "Value preview: %s\n", truncateString(string(val), 500))
		fmt.Fprintln(w, "---")

		count++
		if count >= limit {
			break
		}
	}

	if err := iter.Error(); err != nil {
		return fmt.Errorf("iterator error: %w", err)
	}

	if count == 0 {
		fmt.Fprintln(w, "No keys matched the requested prefix.")
	}

	return nil
}

func runFallbackLookup(cmd *cobra.Command, cfg config.Config, key string) error {
	if cfg.FallbackDriver == database.DriverNone || cfg.FallbackDSN == "" {
		return errors.New("no fallback database configured")
	}
	store, err := database.OpenFeedStore(cfg.FallbackDriver, cfg.FallbackDSN)
	if err != nil {
		return err
	}
	defer store.Close()

	articles, updated, err := store.LookupFeed(cmd.Context(), strings.TrimSpace(key))
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s: %d articles, updated %s\n", key, len(articles), updated.Format(time.RFC3339))
	for i, a := range articles {
		fmt.Fprintf(w, "%2d. %s\n", i+1, truncateString(a.Title, 100))
	}
	return nil
}

func truncateString(in string, max int) string {
	if len(in) <= max {
		return in
	}
	return in[:max] + "..."
}
