// file: internal/prefetch/prefetch.go
// version: 1.0.0
// guid: 1d1b9fbf-6d15-4bf8-bdfa-63ead2202475

// Package prefetch warms the news cache for a set of categories and
// countries, optionally mirroring live results into the relational
// fallback store.
package prefetch

import (
	"context"
	"log"
	"sync"

	"github.com/jdfalk/newsdeck/internal/models"
	"github.com/jdfalk/newsdeck/internal/news"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel feed fetches.
const DefaultConcurrency = 4

// Fetcher loads one feed.
type Fetcher interface {
	FetchFeed(ctx context.Context, label, country string) news.FeedResult
}

// Mirror persists live feeds for later fallback reads.
type Mirror interface {
	SaveFeed(ctx context.Context, key string, articles []models.Article) error
}

// Job is one (category, country) pair to warm.
type Job struct {
	Category string
	Country  string
}

// Result is the outcome of one job.
type Result struct {
	Key      news.FeedKey `json:"key"`
	Origin   news.Origin  `json:"origin"`
	Articles int          `json:"articles"`
	Mirrored bool         `json:"mirrored"`
	Message  string       `json:"message,omitempty"`
}

// Report summarizes a run.
type Report struct {
	Results  []Result            `json:"results"`
	ByOrigin map[news.Origin]int `json:"byOrigin"`
	Mirrored int                 `json:"mirrored"`
	Canceled bool                `json:"canceled,omitempty"`
}

// Options tune a run.
type Options struct {
	Concurrency int
	Mirror      Mirror
	// Progress is called after each job with the number finished so far.
	Progress func(done, total int)
}

// Jobs expands categories × countries, deduplicating pairs that resolve to
// the same feed key.
func Jobs(categories, countries []string) []Job {
	if len(countries) == 0 {
		countries = []string{""}
	}
	seen := make(map[news.FeedKey]bool)
	var out []Job
	for _, category := range categories {
		for _, country := range countries {
			key := news.NewFeedKey(category, country)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, Job{Category: key.Category, Country: key.Country})
		}
	}
	return out
}

// Run fetches every job. Results keep job order. Failures degrade per job
// and never abort the run; cancellation stops scheduling new jobs.
func Run(ctx context.Context, fetcher Fetcher, jobs []Job, opts Options) Report {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]Result, len(jobs))
	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = runJob(gctx, fetcher, job, opts.Mirror)

			mu.Lock()
			done++
			n := done
			mu.Unlock()
			if opts.Progress != nil {
				opts.Progress(n, len(jobs))
			}
			return nil
		})
	}
	_ = g.Wait()

	report := Report{ByOrigin: make(map[news.Origin]int)}
	for i, r := range results {
		if r.Origin == "" {
			// never started
			report.Canceled = true
			r = Result{Key: news.FeedKey{Category: jobs[i].Category, Country: jobs[i].Country}, Origin: news.OriginNone, Message: "canceled"}
		}
		report.Results = append(report.Results, r)
		report.ByOrigin[r.Origin]++
		if r.Mirrored {
			report.Mirrored++
		}
	}
	if ctx.Err() != nil {
		report.Canceled = true
	}
	return report
}

func runJob(ctx context.Context, fetcher Fetcher, job Job, mirror Mirror) Result {
	res := fetcher.FetchFeed(ctx, job.Category, job.Country)
	out := Result{Key: res.Key, Origin: res.Origin, Articles: len(res.Articles), Message: res.Message}
	if res.Canceled {
		out.Origin = news.OriginNone
		out.Message = "canceled"
		return out
	}
	if mirror == nil || res.Origin != news.OriginLive || len(res.Articles) == 0 {
		return out
	}
	if err := mirror.SaveFeed(ctx, res.Key.CacheKey(), res.Articles); err != nil {
		log.Printf("[WARN] prefetch: mirror %s failed: %v", res.Key.CacheKey(), err)
		out.Message = "mirror failed"
		return out
	}
	out.Mirrored = true
	return out
}
