// Package verify orchestrates link checking: local links are verified
// inline against the filesystem, external links fan out to a bounded
// probe pool, and every failing verdict streams into the report sink as
// it is discovered.
package verify

import (
	"context"
	"fmt"
	"io"

	"github.com/avsol/linkrot/internal/link"
	"github.com/avsol/linkrot/internal/manifest"
	"github.com/avsol/linkrot/internal/model"
	"github.com/avsol/linkrot/internal/probe"
	"github.com/avsol/linkrot/internal/util"
	"github.com/avsol/linkrot/internal/worker"
)

// Prober performs one external reachability check
type Prober interface {
	Check(ctx context.Context, rawURL string) model.ProbeOutcome
}

// Sink receives failing verdicts. Implementations must be safe for
// concurrent writes and must flush each record durably before returning.
type Sink interface {
	Write(rec model.VerificationRecord) error
}

// RobotsPolicy decides whether a URL may be probed at all
type RobotsPolicy interface {
	Allowed(ctx context.Context, rawURL string) bool
}

// Engine runs a verification pass over a manifest
type Engine struct {
	cfg      *model.Config
	root     string
	prober   Prober
	limiter  *worker.Limiter
	robots   RobotsPolicy // nil allows everything
	sink     Sink
	progress io.Writer
}

// New creates an engine rooted at root, writing failures to sink.
// progress receives advisory operator output; nil silences it.
func New(cfg *model.Config, root string, sink Sink, progress io.Writer) *Engine {
	e := &Engine{
		cfg:  cfg,
		root: root,
		prober: probe.New(probe.Options{
			Timeout:      cfg.HTTP.Timeout(),
			MaxRedirects: cfg.HTTP.MaxRedirects,
			HTTPProxy:    cfg.HTTP.HTTPProxy,
			HTTPSProxy:   cfg.HTTP.HTTPSProxy,
		}),
		limiter:  worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
		sink:     sink,
		progress: progress,
	}
	if cfg.Robots.Respect {
		e.robots = util.NewRobotsChecker(probe.UserAgent(), cfg.HTTP.Timeout(), cfg.Robots.CacheTTL())
	}
	return e
}

// externalTask is one (source document, link) pair bound for the probe
// pool. A URL referenced from several documents is probed once per
// occurrence so the failure is attributed per source document.
type externalTask struct {
	source string
	link   string
}

type probeResult struct {
	source  string
	link    string
	outcome model.ProbeOutcome
	skipped bool // robots policy declined the probe
	aborted bool // shutdown abandoned the task before a verdict
}

// Run checks every link in the manifest. Local links are verified
// synchronously as they are enumerated; external links are dispatched to
// the worker pool afterwards, and each failing outcome is written to the
// sink the moment it completes. Cancellation of ctx stops submitting new
// probes; records already written remain valid.
func (e *Engine) Run(ctx context.Context, m *manifest.Manifest) (model.CheckStats, error) {
	var stats model.CheckStats
	var external []externalTask

	for _, entry := range m.Files {
		if len(entry.Links) == 0 {
			continue
		}
		stats.FilesProcessed++
		e.progressf("Checking links in: %s (%d links)\n", entry.Path, len(entry.Links))

		for _, raw := range entry.Links {
			stats.LinksChecked++

			switch link.Classify(raw) {
			case link.KindSkip:
				stats.Skipped++
			case link.KindExternal:
				external = append(external, externalTask{source: entry.Path, link: raw})
			case link.KindLocal:
				rec, failed := CheckLocal(e.root, entry.Path, raw)
				if !failed {
					continue
				}
				stats.DeadLinks++
				if err := e.sink.Write(rec); err != nil {
					return stats, fmt.Errorf("write record: %w", err)
				}
			}
		}
	}

	if len(external) == 0 {
		return stats, nil
	}

	pool := worker.NewPool[probeResult](ctx, e.cfg.Concurrency.Workers)
	pool.Start()

	go func() {
		for _, task := range external {
			task := task
			if !pool.Submit(func(ctx context.Context) probeResult {
				return e.probeOne(ctx, task)
			}) {
				break
			}
		}
		pool.Finish()
	}()

	for res := range pool.Results() {
		switch {
		case res.aborted:
			continue
		case res.skipped:
			stats.Skipped++
			e.progressf("Skipped %s (robots.txt)\n", res.link)
			continue
		}

		stats.ExternalProbed++
		e.progressf("Checked %s: %s\n", res.link, res.outcome.Reason)

		if res.outcome.OK {
			continue
		}
		stats.DeadLinks++
		rec := model.VerificationRecord{
			SourceFile:   res.source,
			Link:         res.link,
			Reason:       res.outcome.Reason,
			ResolvedPath: res.link,
			Detail:       res.outcome.Detail,
		}
		if err := e.sink.Write(rec); err != nil {
			pool.Shutdown()
			return stats, fmt.Errorf("write record: %w", err)
		}
	}

	return stats, nil
}

// probeOne runs one external probe under the politeness limiter and the
// optional robots policy.
func (e *Engine) probeOne(ctx context.Context, task externalTask) probeResult {
	res := probeResult{source: task.source, link: task.link}

	if e.robots != nil && !e.robots.Allowed(ctx, task.link) {
		res.skipped = true
		return res
	}

	if err := e.limiter.Wait(ctx, task.link); err != nil {
		res.aborted = true
		return res
	}

	res.outcome = e.prober.Check(ctx, task.link)

	// A failure observed while shutting down is an abandoned task, not a
	// dead link; it must not reach the report.
	if !res.outcome.OK && ctx.Err() != nil {
		res.aborted = true
	}
	return res
}

func (e *Engine) progressf(format string, args ...any) {
	if e.progress != nil {
		fmt.Fprintf(e.progress, format, args...)
	}
}
