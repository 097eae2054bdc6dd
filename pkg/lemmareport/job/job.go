// Package job runs one report: assemble the document, render it and publish
// the result.
package job

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/lemmareport/internal/logging"
	"github.com/cognicore/lemmareport/internal/metrics"
	"github.com/cognicore/lemmareport/pkg/lemmareport/config"
	"github.com/cognicore/lemmareport/pkg/lemmareport/internalerr"
	"github.com/cognicore/lemmareport/pkg/lemmareport/publish"
	"github.com/cognicore/lemmareport/pkg/lemmareport/report"
	"github.com/cognicore/lemmareport/pkg/lemmareport/store"
)

// Renderer turns a document into HTML.
type Renderer interface {
	Fragment(doc *report.Document) ([]byte, error)
	Page(doc *report.Document) ([]byte, error)
}

// Deps are the collaborators of a run. Metrics and ErrorLog may be nil.
// When Source is nil, OpenSource is called at the start of the run and the
// source it returns is closed when the run ends.
type Deps struct {
	Source     store.Source
	OpenSource func(ctx context.Context) (store.Source, error)
	Publisher  publish.Publisher
	Renderer   Renderer
	Metrics    *metrics.Metrics
	ErrorLog   *logging.ErrorLog
	Logger     *slog.Logger
}

// Result summarizes a finished run.
type Result struct {
	RunID       string
	Document    *report.Document
	Sections    int
	RecordsRead int64
	Bytes       int
	Duration    time.Duration
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewRunID returns a fresh, time-ordered run identifier.
func NewRunID(at time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), entropy).String()
}

// Run executes one report run against cfg with reference time now. The page
// is rendered as a fragment when the publisher injects into a template and
// as a full document otherwise. Nothing is published unless assembly and
// rendering both succeed. Failures are recorded in the error log and
// metrics before being returned.
func Run(ctx context.Context, deps Deps, cfg *config.Config, now time.Time) (Result, error) {
	start := time.Now()
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	res := Result{RunID: NewRunID(start)}
	log = log.With("run_id", res.RunID)

	err := run(ctx, deps, cfg, now, log, &res)
	res.Duration = time.Since(start)
	if err != nil {
		deps.Metrics.RecordFailure(internalerr.Kind(err), res.Duration)
		deps.ErrorLog.Record(ctx, res.RunID, err)
		log.Error("report run failed", "kind", internalerr.Kind(err), "err", err)
		return res, err
	}

	deps.Metrics.RecordSuccess(res.RecordsRead, res.Sections, res.Duration, now)
	log.Info("report run finished",
		"sections", res.Sections,
		"records", res.RecordsRead,
		"bytes", res.Bytes,
		"duration", res.Duration,
	)
	return res, nil
}

func run(ctx context.Context, deps Deps, cfg *config.Config, now time.Time, log *slog.Logger, res *Result) error {
	if cfg == nil {
		return fmt.Errorf("nil config: %w", internalerr.ErrInvalidConfig)
	}
	if deps.Renderer == nil || deps.Publisher == nil {
		return fmt.Errorf("renderer and publisher are required: %w", internalerr.ErrInvalidConfig)
	}
	src := deps.Source
	if src == nil {
		if deps.OpenSource == nil {
			return fmt.Errorf("no token source: %w", internalerr.ErrInvalidConfig)
		}
		opened, err := deps.OpenSource(ctx)
		if err != nil {
			return fmt.Errorf("open source: %w: %w", internalerr.ErrSourceUnavailable, err)
		}
		defer func() {
			if cerr := opened.Close(); cerr != nil {
				log.Warn("close source", "err", cerr)
			}
		}()
		src = opened
	}
	doc, err := Assemble(ctx, src, cfg, now, log)
	if err != nil {
		return err
	}
	res.Document = doc
	res.Sections = len(doc.Sections)
	res.RecordsRead = doc.RecordsRead

	var content []byte
	if cfg.Publish.Template != "" {
		content, err = deps.Renderer.Fragment(doc)
	} else {
		content, err = deps.Renderer.Page(doc)
	}
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := deps.Publisher.Publish(ctx, content); err != nil {
		if !errors.Is(err, internalerr.ErrInvalidConfig) && !errors.Is(err, internalerr.ErrPublish) {
			err = fmt.Errorf("%w: %w", internalerr.ErrPublish, err)
		}
		return err
	}
	res.Bytes = len(content)
	return nil
}

// Assemble builds the document for cfg without rendering or publishing.
func Assemble(ctx context.Context, src store.Source, cfg *config.Config, now time.Time, log *slog.Logger) (*report.Document, error) {
	opts, err := cfg.AssemblerOptions(log)
	if err != nil {
		return nil, err
	}
	asm, err := report.NewAssembler(src, opts)
	if err != nil {
		return nil, err
	}
	return asm.Assemble(ctx, now)
}
