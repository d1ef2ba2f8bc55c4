// file: cmd/commands.go
// version: 1.0.0
// guid: 98073b6f-11c6-467b-8c38-061878a91e13

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jdfalk/newsdeck/internal/config"
	"github.com/jdfalk/newsdeck/internal/feed"
	"github.com/jdfalk/newsdeck/internal/models"
	"github.com/jdfalk/newsdeck/internal/news"
	"github.com/jdfalk/newsdeck/internal/prefetch"
	"github.com/jdfalk/newsdeck/internal/sanitize"
	"github.com/jdfalk/newsdeck/internal/sports"
	"github.com/jdfalk/newsdeck/internal/weather"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Fetch one news feed",
	Long:  `Fetch the feed for a category and country, falling back to cached or mirrored data when the backend fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		country, _ := cmd.Flags().GetString("country")
		sortFlag, _ := cmd.Flags().GetString("sort")
		asJSON, _ := cmd.Flags().GetBool("json")

		mode, err := feed.ParseMode(sortFlag)
		if err != nil {
			return err
		}

		a, err := newApp(config.AppConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		res := a.news.FetchFeed(cmd.Context(), category, country)
		res.Articles = feed.Arrange(res.Articles, mode)
		if asJSON {
			return writeJSON(cmd.OutOrStdout(), res)
		}
		printFeed(cmd.OutOrStdout(), res)
		return nil
	},
}

var readCmd = &cobra.Command{
	Use:   "read <url>",
	Short: "Print the readable text of an article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		visible, _ := cmd.Flags().GetInt("visible")

		a, err := newApp(config.AppConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		body := a.news.ReadArticle(cmd.Context(), models.Article{URL: args[0], Title: title, Description: description})
		printArticle(cmd.OutOrStdout(), body, visible)
		return nil
	},
}

var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Show current weather for the configured location",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		a, err := newApp(config.AppConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		view := a.weather.Refresh(cmd.Context())
		if asJSON {
			return writeJSON(cmd.OutOrStdout(), view)
		}
		printWeather(cmd.OutOrStdout(), view)
		return nil
	},
}

var scoresCmd = &cobra.Command{
	Use:   "scores [sport] [league]",
	Short: "Show live, upcoming and recent events for a league",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cached, _ := cmd.Flags().GetBool("cached")
		asJSON, _ := cmd.Flags().GetBool("json")

		sel, err := selectionFromArgs(args)
		if err != nil {
			return err
		}

		a, err := newApp(config.AppConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		var board models.Scoreboard
		if cached {
			var ok bool
			board, ok = a.sports.Cached(sel)
			if !ok {
				return fmt.Errorf("no fresh cached scoreboard for %s/%s", sel.Sport, sel.League)
			}
		} else {
			board, err = a.sports.FetchScoreboard(cmd.Context(), sel.Sport, sel.League)
			if err != nil {
				return err
			}
		}
		if asJSON {
			return writeJSON(cmd.OutOrStdout(), board)
		}
		printScoreboard(cmd.OutOrStdout(), board)
		return nil
	},
}

var standingsCmd = &cobra.Command{
	Use:   "standings [sport] [league]",
	Short: "Show league standings",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		sel, err := selectionFromArgs(args)
		if err != nil {
			return err
		}

		a, err := newApp(config.AppConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		standings, err := a.sports.FetchStandings(cmd.Context(), sel.Sport, sel.League)
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(cmd.OutOrStdout(), standings)
		}
		printStandings(cmd.OutOrStdout(), standings)
		return nil
	},
}

var prefetchCmd = &cobra.Command{
	Use:   "prefetch",
	Short: "Warm the news cache for the configured categories and countries",
	RunE: func(cmd *cobra.Command, args []string) error {
		mirror, _ := cmd.Flags().GetBool("mirror")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		quiet, _ := cmd.Flags().GetBool("quiet")

		a, err := newApp(config.AppConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		opts := prefetch.Options{Concurrency: concurrency}
		if mirror {
			if a.fallback == nil {
				return fmt.Errorf("--mirror needs fallback_driver and fallback_dsn")
			}
			opts.Mirror = a.fallback
		}

		jobs := prefetch.Jobs(config.AppConfig.PrefetchCategories, config.AppConfig.PrefetchCountries)
		if !quiet {
			bar := progressbar.NewOptions(len(jobs),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription("prefetching feeds"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
			opts.Progress = func(done, total int) { _ = bar.Set(done) }
			defer bar.Finish()
		}

		report := prefetch.Run(cmd.Context(), a.news, jobs, opts)
		printPrefetch(cmd.OutOrStdout(), report)
		if report.Canceled {
			return fmt.Errorf("prefetch canceled")
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		write, _ := cmd.Flags().GetString("write")
		if write != "" {
			return config.SaveConfigToFile(write)
		}
		return config.WriteYAML(cmd.OutOrStdout())
	},
}

func init() {
	feedCmd.Flags().String("category", "Top Stories", "category label (Top Stories, World, Tech, ...)")
	feedCmd.Flags().String("country", "", "ISO country code; empty for a global feed")
	feedCmd.Flags().String("sort", "latest", "latest or trending")
	feedCmd.Flags().Bool("json", false, "print JSON")

	readCmd.Flags().String("title", "", "article title, used to drop read-more links")
	readCmd.Flags().String("description", "", "shown when the text cannot be extracted")
	readCmd.Flags().Int("visible", 0, "paragraphs to show before the remainder count (0 shows all)")

	weatherCmd.Flags().Bool("json", false, "print JSON")

	scoresCmd.Flags().Bool("cached", false, "only read the local cache")
	scoresCmd.Flags().Bool("json", false, "print JSON")

	standingsCmd.Flags().Bool("json", false, "print JSON")

	prefetchCmd.Flags().Bool("mirror", false, "copy live feeds into the fallback database")
	prefetchCmd.Flags().Int("concurrency", prefetch.DefaultConcurrency, "parallel feed fetches")
	prefetchCmd.Flags().Bool("quiet", false, "hide the progress bar")

	configCmd.Flags().String("write", "", "write the effective configuration to this file instead")
}

// selectionFromArgs resolves [sport] [league], defaulting from config.
func selectionFromArgs(args []string) (sports.Selection, error) {
	sport := config.AppConfig.DefaultSport
	league := config.AppConfig.DefaultLeague
	if len(args) > 0 {
		sport = args[0]
		league = ""
	}
	if len(args) > 1 {
		league = args[1]
	}
	return sports.NewSelection(sport, league)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printFeed(w io.Writer, res news.FeedResult) {
	country := res.Key.Country
	if country == "" {
		country = "global"
	}
	fmt.Fprintf(w, "%s (%s) - %d articles from %s\n", res.Key.Category, country, len(res.Articles), res.Origin)
	if res.Message != "" {
		fmt.Fprintf(w, "note: %s\n", res.Message)
	}
	for i, a := range res.Articles {
		fmt.Fprintf(w, "%2d. %s\n", i+1, a.Title)
		meta := []string{}
		if a.Source != "" {
			meta = append(meta, a.Source)
		}
		if a.PublishedAt != "" {
			meta = append(meta, a.PublishedAt)
		}
		if a.IsCluster() {
			meta = append(meta, fmt.Sprintf("%d sources", len(a.AllSources)))
		}
		if len(meta) > 0 {
			fmt.Fprintf(w, "    %s\n", strings.Join(meta, " · "))
		}
	}
}

func printArticle(w io.Writer, body news.ArticleBody, visible int) {
	if body.Message != "" {
		fmt.Fprintf(w, "note: %s\n", body.Message)
	}
	paragraphs, remaining := body.Paragraphs, 0
	if visible > 0 {
		paragraphs, remaining = sanitize.Disclose(body.Paragraphs, visible)
	}
	for _, p := range paragraphs {
		fmt.Fprintf(w, "%s\n\n", p)
	}
	if remaining > 0 {
		fmt.Fprintf(w, "(%d more paragraphs)\n", remaining)
	}
	if len(body.Paragraphs) == 0 {
		fmt.Fprintln(w, "(no readable text)")
	}
}

func printWeather(w io.Writer, view weather.View) {
	s := view.Summary
	fmt.Fprintf(w, "%s: %s, %s (high %s, low %s)\n", s.Location, s.Temp, s.Condition, s.High, s.Low)
	for _, d := range s.Weekly {
		fmt.Fprintf(w, "  %-4s %s/%s %s\n", d.Day, d.High, d.Low, d.Condition)
	}
	if view.Error != "" {
		fmt.Fprintf(w, "note: %s\n", view.Error)
	}
}

func printScoreboard(w io.Writer, board models.Scoreboard) {
	title := board.Title
	if title == "" {
		title = board.Sport + "/" + board.League
	}
	fmt.Fprintln(w, title)
	for _, bucket := range []struct {
		name   string
		events []models.SportsEvent
	}{{"Live", board.Live}, {"Upcoming", board.Upcoming}, {"Recent", board.Recent}} {
		if len(bucket.events) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s:\n", bucket.name)
		for _, ev := range bucket.events {
			fmt.Fprintf(w, "  %s %s - %s %s  %s\n",
				ev.Home.Name, formatScore(ev.Home.Score), formatScore(ev.Away.Score), ev.Away.Name, ev.Status.ShortDetail)
		}
	}
}

func printStandings(w io.Writer, st models.Standings) {
	for _, table := range st.Tables {
		fmt.Fprintln(w, table.Name)
		for _, e := range table.Entries {
			fmt.Fprintf(w, "  %2d. %s\n", e.Rank, e.Team.Name)
		}
	}
	if len(st.Tables) == 0 {
		fmt.Fprintln(w, "(no standings)")
	}
}

func printPrefetch(w io.Writer, report prefetch.Report) {
	for _, r := range report.Results {
		line := fmt.Sprintf("%-28s %-8s %3d", r.Key.CacheKey(), r.Origin, r.Articles)
		if r.Mirrored {
			line += " mirrored"
		}
		if r.Message != "" {
			line += " (" + r.Message + ")"
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "%d live, %d cache, %d fallback, %d none, %d mirrored\n",
		report.ByOrigin[news.OriginLive], report.ByOrigin[news.OriginCache],
		report.ByOrigin[news.OriginFallback], report.ByOrigin[news.OriginNone], report.Mirrored)
}

func formatScore(score *int) string {
	if score == nil {
		return "-"
	}
	return fmt.Sprint(*score)
}
