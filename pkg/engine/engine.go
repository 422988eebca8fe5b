package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/DrSkyle/knapsack-ga/pkg/catalog"
	"github.com/DrSkyle/knapsack-ga/pkg/config"
	"github.com/DrSkyle/knapsack-ga/pkg/engine/evolution"
	"github.com/DrSkyle/knapsack-ga/pkg/engine/history"
	"github.com/DrSkyle/knapsack-ga/pkg/engine/report"
	"github.com/DrSkyle/knapsack-ga/pkg/storage"
	"github.com/DrSkyle/knapsack-ga/pkg/telemetry"
	"github.com/DrSkyle/knapsack-ga/pkg/version"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ErrPanic wraps a recovered panic from inside a run.
var ErrPanic = errors.New("run aborted by panic")

// ErrNoInput is returned when no input file is configured.
var ErrNoInput = errors.New("no input file")

// Config holds engine settings.
type Config struct {
	InputPath string
	Evolution config.EvolutionConfig
	Output    config.OutputConfig

	// Filter is a CEL expression over id, value, weight and capacity.
	Filter string
	// Verify runs the exhaustive solver after evolution on small catalogs.
	Verify bool

	Verbose  bool
	JsonLogs bool

	// Telemetry config.
	OtelEndpoint  string // "http://localhost:4318" or via env
	SkipTelemetry bool   // Set true if embedding in an app that already has OTEL

	// Dependencies.
	Logger *slog.Logger
	// Progress observes every generation after it is logged.
	// Returning an error aborts the run.
	Progress evolution.GenerationFunc
}

// Engine is the runtime core.
type Engine struct {
	Logger *slog.Logger
	Tracer trace.Tracer
	Ledger *history.Client

	config    Config
	outputDir string
	s3Target  *storage.Target
	artifacts storage.BlobStore

	generations metric.Int64Counter
	bestFitness metric.Int64Gauge
	shutdown    func(context.Context) error
}

// Outcome is what a finished run produced.
type Outcome struct {
	RunID       string
	Seed        uint64
	Elapsed     time.Duration
	Catalog     *catalog.Catalog
	Result      *evolution.Result
	Convergence history.ConvergenceResult
	// Optimum is set when the run was verified.
	Optimum *int
	// LogPath is where the generation log was written.
	LogPath string
	// ExportPath is set when the result was exported.
	ExportPath string
}

// Summary converts the outcome into the printable report.
func (o *Outcome) Summary(input string) report.Summary {
	return report.Summary{
		Input:       input,
		Seed:        o.Seed,
		ElapsedMS:   o.Elapsed.Milliseconds(),
		Result:      o.Result,
		Convergence: o.Convergence,
		Optimum:     o.Optimum,
	}
}

// Option defines a functional configuration override.
type Option func(*Engine)

// New initializes the Engine.
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	e := &Engine{
		config: Config{
			Evolution: config.DefaultEvolutionConfig(),
			Output:    config.DefaultOutputConfig(),
		},
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.Logger == nil {
		e.Logger = NewLogger(os.Stderr, e.config.JsonLogs, e.config.Verbose)
	}
	slog.SetDefault(e.Logger)

	if !e.config.SkipTelemetry {
		shutdown, err := telemetry.Init(ctx, version.AppName, version.Current, e.config.OtelEndpoint)
		if err != nil {
			e.Logger.Warn("Telemetry failed", "error", err)
		} else {
			e.shutdown = shutdown
		}
	}

	e.Tracer = telemetry.Tracer("knapsack-ga/engine")
	meter := telemetry.Meter("knapsack-ga/engine")
	var err error
	if e.generations, err = meter.Int64Counter("knapsack.generations",
		metric.WithDescription("Generations evolved")); err != nil {
		return nil, fmt.Errorf("failed to create generations counter: %w", err)
	}
	if e.bestFitness, err = meter.Int64Gauge("knapsack.best_fitness",
		metric.WithDescription("Best fitness found so far")); err != nil {
		return nil, fmt.Errorf("failed to create best fitness gauge: %w", err)
	}

	if e.config.Output.OutputDir != "" {
		target, err := storage.ParseTarget(e.config.Output.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("invalid output dir: %w", err)
		}
		if target.IsS3() {
			e.s3Target = &target
		} else {
			e.outputDir = target.Prefix
		}
	}

	if e.config.Output.LedgerPath != "" && e.Ledger == nil {
		backend, err := OpenLedger(ctx, e.config.Output.LedgerPath)
		if err != nil {
			return nil, err
		}
		e.Ledger = history.NewClient(backend)
	}

	return e, nil
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.Logger = l
	}
}

// WithConfig sets raw config.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.config = cfg
		if cfg.Output.LogFile == "" {
			e.config.Output.LogFile = config.DefaultLogFile
		}
		if cfg.Logger != nil {
			e.Logger = cfg.Logger
		}
	}
}

// WithLedger overrides the ledger backend.
func WithLedger(b history.Backend) Option {
	return func(e *Engine) {
		e.Ledger = history.NewClient(b)
	}
}

// WithArtifactStore sets the store s3 output targets upload into,
// instead of one built from the ambient AWS config.
func WithArtifactStore(s storage.BlobStore) Option {
	return func(e *Engine) {
		e.artifacts = s
	}
}

// Close flushes telemetry.
func (e *Engine) Close(ctx context.Context) error {
	if e.shutdown == nil {
		return nil
	}
	return e.shutdown(ctx)
}

// Run loads the catalog, evolves it and writes every configured artifact.
func (e *Engine) Run(ctx context.Context) (out *Outcome, err error) {
	ctx, span := e.Tracer.Start(ctx, "Engine.Run")
	defer span.End()

	defer e.recoverPanic(ctx, &err)

	cfg := e.config
	if cfg.InputPath == "" {
		return nil, ErrNoInput
	}

	cat, err := e.loadCatalog(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "load failed")
		return nil, err
	}

	seed := cfg.Evolution.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	evoCfg := cfg.Evolution
	evoCfg.Seed = seed

	solver, err := evolution.NewSolver(cat, evoCfg, evolution.NewRand(seed))
	if err != nil {
		return nil, err
	}

	logPath := e.artifactPath(cfg.Output.LogFile)
	genLog, err := history.CreateGenerationLog(logPath)
	if err != nil {
		return nil, err
	}
	defer genLog.Close()

	e.Logger.Info("Starting evolution",
		"input", cfg.InputPath,
		"items", cat.Len(),
		"capacity", cat.Capacity(),
		"total_weight", cat.TotalWeight(),
		"iterations", evoCfg.Iterations,
		"population", evoCfg.PopulationSize,
		"seed", seed,
	)
	if cat.TotalWeight() <= cat.Capacity() {
		e.Logger.Info("Every item fits within capacity", "total_weight", cat.TotalWeight())
	}
	span.SetAttributes(
		attribute.Int("catalog.items", cat.Len()),
		attribute.Int("catalog.capacity", cat.Capacity()),
		attribute.Int64("run.seed", int64(seed)),
	)

	start := time.Now()
	result, err := e.evolve(ctx, solver, genLog)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evolution failed")
		return nil, err
	}
	elapsed := time.Since(start)

	if err := genLog.Close(); err != nil {
		return nil, err
	}

	out = &Outcome{
		RunID:       uuid.NewString(),
		Seed:        seed,
		Elapsed:     elapsed,
		Catalog:     cat,
		Result:      result,
		Convergence: history.AnalyzeConvergence(result.Generations, 0),
		LogPath:     logPath,
	}
	e.Logger.Info("Evolution complete",
		"best_value", result.BestValue,
		"best_weight", result.BestWeight,
		"elapsed_ms", elapsed.Milliseconds(),
	)

	if cfg.Verify {
		e.verify(ctx, out)
	}

	if cfg.Output.ExportPath != "" {
		path := e.artifactPath(cfg.Output.ExportPath)
		if err := report.Export(e.document(out), path); err != nil {
			return nil, fmt.Errorf("failed to export result: %w", err)
		}
		out.ExportPath = path
	}

	if e.Ledger != nil {
		if err := e.Ledger.Append(ctx, e.record(out)); err != nil {
			e.Logger.Warn("Failed to append run to ledger", "error", err)
		}
	}

	if err := e.UploadArtifacts(ctx, out.LogPath, out.ExportPath); err != nil {
		e.Logger.Warn("Artifact upload failed", "error", err)
	}

	return out, nil
}

func (e *Engine) loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	_, span := e.Tracer.Start(ctx, "Engine.LoadCatalog")
	defer span.End()

	cat, err := catalog.LoadFile(e.config.InputPath)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if e.config.Filter == "" {
		return cat, nil
	}

	filtered, err := cat.Filter(e.config.Filter)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	e.Logger.Info("Applied item filter",
		"expr", e.config.Filter,
		"kept", filtered.Len(),
		"dropped", cat.Len()-filtered.Len(),
	)
	return filtered, nil
}

func (e *Engine) evolve(ctx context.Context, solver *evolution.Solver, genLog *history.GenerationLog) (*evolution.Result, error) {
	ctx, span := e.Tracer.Start(ctx, "Engine.Evolve")
	defer span.End()

	result, err := solver.Run(func(s evolution.Stats) error {
		if err := genLog.Record(s.Best); err != nil {
			return err
		}

		if s.Generation == 0 {
			e.Logger.Info("Initial population", "best", s.Best, "mean", s.Mean, "feasible", s.Feasible)
		} else {
			e.Logger.Debug("Generation",
				"generation", s.Generation,
				"best", s.Best,
				"generation_best", s.GenerationBest,
				"mean", s.Mean,
				"std_dev", s.StdDev,
				"crossovers", s.Crossovers,
				"mutations", s.Mutations,
			)
			e.generations.Add(ctx, 1)
		}
		e.bestFitness.Record(ctx, int64(s.Best))

		if e.config.Progress != nil {
			return e.config.Progress(s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("run.best_value", result.BestValue))
	return result, nil
}

func (e *Engine) verify(ctx context.Context, out *Outcome) {
	_, span := e.Tracer.Start(ctx, "Engine.Verify")
	defer span.End()

	optimum, _, err := evolution.BruteForce(out.Catalog)
	if err != nil {
		e.Logger.Warn("Skipping verification", "error", err)
		return
	}
	out.Optimum = &optimum
	span.SetAttributes(attribute.Int("run.optimum", optimum))
	e.Logger.Info("Verified against exhaustive search", "optimum", optimum, "gap", optimum-out.Result.BestValue)
}

func (e *Engine) document(out *Outcome) report.Document {
	params := e.config.Evolution
	params.Seed = out.Seed
	return report.Document{
		RunID:       out.RunID,
		Input:       e.config.InputPath,
		Seed:        out.Seed,
		Params:      params,
		Capacity:    out.Result.Capacity,
		BestValue:   out.Result.BestValue,
		BestWeight:  out.Result.BestWeight,
		BestItems:   out.Result.BestItems,
		Waste:       out.Result.Waste,
		Utilization: out.Result.Utilization,
		Optimum:     out.Optimum,
		ElapsedMS:   out.Elapsed.Milliseconds(),
		Generations: out.Result.Generations,
	}
}

func (e *Engine) record(out *Outcome) history.RunRecord {
	params := e.config.Evolution
	params.Seed = out.Seed
	return history.RunRecord{
		ID:         out.RunID,
		Timestamp:  time.Now().Unix(),
		Input:      e.config.InputPath,
		Items:      out.Catalog.Len(),
		Capacity:   out.Catalog.Capacity(),
		Params:     params,
		BestValue:  out.Result.BestValue,
		BestWeight: out.Result.BestWeight,
		Optimum:    out.Optimum,
		ElapsedMS:  out.Elapsed.Milliseconds(),
	}
}

// artifactPath places relative artifact paths under a local output dir.
func (e *Engine) artifactPath(p string) string {
	if e.outputDir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(e.outputDir, p)
}

// OpenLedger returns a JSONL file backend, or a blob backend for
// s3://bucket/key locations.
func OpenLedger(ctx context.Context, raw string) (history.Backend, error) {
	if !strings.HasPrefix(raw, "s3://") {
		return history.NewLocalBackend(raw), nil
	}
	target, err := storage.ParseTarget(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid ledger location: %w", err)
	}
	store, err := storage.Open(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger store: %w", err)
	}
	key := target.Prefix
	if key == "" {
		key = "ledger.jsonl"
	}
	return history.NewBlobBackend(store, key), nil
}

// NewLogger builds the redacting slog logger used by the engine.
func NewLogger(w io.Writer, jsonLogs, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redactSensitiveData,
	}
	if jsonLogs {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// recoverPanic turns a panic inside Run into an error.
func (e *Engine) recoverPanic(ctx context.Context, errp *error) {
	if r := recover(); r != nil {
		_, span := e.Tracer.Start(ctx, "CriticalPanic")

		stack := debug.Stack()

		span.RecordError(fmt.Errorf("%v", r), trace.WithStackTrace(true))
		span.SetStatus(codes.Error, "CRITICAL FAILURE")
		span.SetAttributes(
			attribute.String("crash.stack", string(stack)),
			attribute.String("crash.reason", fmt.Sprintf("%v", r)),
		)
		span.End()

		e.Logger.Error("CRITICAL FAILURE", "error", r, "stack", string(stack))
		*errp = fmt.Errorf("%w: %v", ErrPanic, r)
	}
}

// redactSensitiveData scrubs sensitive keys from logs.
func redactSensitiveData(groups []string, a slog.Attr) slog.Attr {
	sensitiveKeys := map[string]bool{
		"password": true, "access_key": true, "token": true,
		"secret": true, "api_key": true, "private_key": true, "auth_token": true,
		"session_token": true, "credential": true, "connection_string": true,
	}

	if sensitiveKeys[a.Key] {
		return slog.Attr{
			Key:   a.Key,
			Value: slog.StringValue("[REDACTED]"),
		}
	}
	return a
}
