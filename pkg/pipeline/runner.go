package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/edgebundle/pkg/bundle"
	"github.com/matzehuels/edgebundle/pkg/cache"
	"github.com/matzehuels/edgebundle/pkg/errors"
	edgeio "github.com/matzehuels/edgebundle/pkg/io"
	"github.com/matzehuels/edgebundle/pkg/observability"
)

// Cache key types reported to observability hooks.
const (
	keyTypeDocument = "document"
	keyTypeResult   = "result"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// ResultTTL overrides cache.TTLResult when positive.
	ResultTTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// cachedResult is the cache encoding of a render.
type cachedResult struct {
	Artifacts map[string][]byte `json:"artifacts"`
	Stats     bundle.Stats      `json:"stats"`
}

// ExecuteInput parses data and runs the rest of the pipeline on it.
func (r *Runner) ExecuteInput(ctx context.Context, data []byte, source string, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForParse(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	parseStart := time.Now()
	doc, err := r.Parse(ctx, data, source, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	parseTime := time.Since(parseStart)

	opts.Logger.Info("parsed edges",
		"source", source,
		"edges", len(doc.Edges),
		"duration", parseTime)

	result, err := r.Execute(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.ParseTime = parseTime
	return result, nil
}

// Parse decodes data, caching laid-out DOT documents. JSON documents are
// cheap to decode and never cached.
func (r *Runner) Parse(ctx context.Context, data []byte, source string, opts Options) (*edgeio.Document, error) {
	r.applyLogger(&opts)
	opts.SetParseDefaults()
	format := opts.InputFormat
	if format == "" {
		format = DetectFormat(source)
		opts.InputFormat = format
	}
	if format != InputDOT {
		return Parse(ctx, data, source, opts)
	}

	key := r.Keyer.DocumentKey(format+":"+opts.Layout, cache.Hash(data))
	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if doc, err := edgeio.ReadJSON(bytes.NewReader(cached)); err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeDocument)
				return doc, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeDocument)
	}

	doc, err := Parse(ctx, data, source, opts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := edgeio.WriteJSON(&buf, doc); err == nil {
		if err := r.Cache.Set(ctx, key, buf.Bytes(), cache.TTLDocument); err != nil {
			opts.Logger.Warn("cache write failed", "key", key, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypeDocument, buf.Len())
		}
	}
	return doc, nil
}

// Execute bundles doc and renders the requested formats, serving the
// artifacts from the cache when an identical run was stored before.
func (r *Runner) Execute(ctx context.Context, doc *edgeio.Document, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if limit := opts.MaxControlPoints; limit > 0 {
		if n := bundle.ControlPointCount(doc.Edges, opts.Config); n > limit {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"%d edges with %d subdivisions need %d control points, limit is %d",
				len(doc.Edges), opts.Config.Subdivisions, n, limit)
		}
	}

	result := &Result{Document: doc}
	result.Stats.Edges = len(doc.Edges)

	key := ""
	if opts.Cacheable() {
		var err error
		if key, err = r.resultKey(doc, opts); err != nil {
			opts.Logger.Warn("cache disabled for this run", "error", err)
		}
	}

	if key != "" && !opts.Refresh {
		if cached, ok := r.lookup(ctx, key, opts); ok {
			result.Artifacts = cached.Artifacts
			result.Stats.Bundle = cached.Stats
			result.CacheHit = true
			opts.Logger.Info("served from cache", "formats", opts.Formats)
			return result, nil
		}
	}

	bundleStart := time.Now()
	results, stats, err := Bundle(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("bundle: %w", err)
	}
	result.Results = results
	result.Stats.Bundle = stats
	result.Stats.BundleTime = time.Since(bundleStart)

	opts.Logger.Info("bundled edges",
		"edges", stats.Edges,
		"pairs", stats.Pairs,
		"iterations", stats.Iterations,
		"duration", result.Stats.BundleTime)

	renderStart := time.Now()
	artifacts, err := Render(ctx, results, doc, stats, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	if key != "" {
		r.store(ctx, key, cachedResult{Artifacts: artifacts, Stats: stats}, opts)
	}
	return result, nil
}

// resultKey hashes the document and every option that shapes the output.
func (r *Runner) resultKey(doc *edgeio.Document, opts Options) (string, error) {
	edgesHash, err := cache.HashJSON(doc)
	if err != nil {
		return "", fmt.Errorf("hash edges: %w", err)
	}
	configHash, err := cache.HashJSON(opts.Config.Normalize())
	if err != nil {
		return "", fmt.Errorf("hash config: %w", err)
	}
	return r.Keyer.ResultKey(edgesHash, opts.ResultKeyOpts(configHash)), nil
}

func (r *Runner) lookup(ctx context.Context, key string, opts Options) (cachedResult, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		opts.Logger.Warn("cache read failed", "key", key, "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyTypeResult)
		return cachedResult{}, false
	}

	var cached cachedResult
	if err := json.Unmarshal(data, &cached); err != nil {
		opts.Logger.Debug("discarding corrupt cache entry", "key", key, "error", err)
		observability.Cache().OnCacheMiss(ctx, keyTypeResult)
		return cachedResult{}, false
	}
	for _, f := range opts.Formats {
		if _, ok := cached.Artifacts[f]; !ok {
			observability.Cache().OnCacheMiss(ctx, keyTypeResult)
			return cachedResult{}, false
		}
	}
	observability.Cache().OnCacheHit(ctx, keyTypeResult)
	return cached, true
}

func (r *Runner) store(ctx context.Context, key string, cr cachedResult, opts Options) {
	data, err := json.Marshal(cr)
	if err != nil {
		return
	}
	ttl := cache.TTLResult
	if r.ResultTTL > 0 {
		ttl = r.ResultTTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		opts.Logger.Warn("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyTypeResult, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
