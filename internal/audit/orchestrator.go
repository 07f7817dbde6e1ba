// Package audit drives one hardening audit: it prepares the report, runs
// every check in order, classifies the total and writes the summary.
package audit

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hardenaudit/hardenaudit/internal/checks"
	"github.com/hardenaudit/hardenaudit/internal/config"
	"github.com/hardenaudit/hardenaudit/internal/errors"
	"github.com/hardenaudit/hardenaudit/internal/report"
	"github.com/hardenaudit/hardenaudit/internal/scoring"
	"github.com/hardenaudit/hardenaudit/internal/system"
	"github.com/hardenaudit/hardenaudit/internal/util"
)

// Options tune a single orchestrator.
type Options struct {
	ReportPath   string
	RunLabel     string
	Progress     io.Writer // start lines and markers; nil discards them
	MaskHostname bool
}

// CheckOutcome records how one check went.
type CheckOutcome struct {
	Name     string           `json:"name"`
	Section  string           `json:"section"`
	Score    float64          `json:"score"`
	MaxScore float64          `json:"max_score"`
	Duration time.Duration    `json:"duration_ns"`
	Findings []report.Finding `json:"findings"`
	Error    string           `json:"error,omitempty"`
}

// Result is everything known about a finished run.
type Result struct {
	RunID         string          `json:"run_id"`
	Label         string          `json:"label"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    time.Time       `json:"finished_at"`
	ReportPath    string          `json:"report_path"`
	Host          *system.OSInfo  `json:"host"`
	Checks        []CheckOutcome  `json:"checks"`
	Verdict       scoring.Verdict `json:"verdict"`
	ReportErrors  int             `json:"report_write_errors,omitempty"`
	DeclaredMax   float64         `json:"declared_max"`
	MaxMismatched bool            `json:"max_mismatched,omitempty"`
}

// Duration is the wall time of the run.
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Orchestrator coordinates the audit.
type Orchestrator struct {
	registry *checks.Registry
	fsys     system.FileSystem
	opts     Options
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string

	lc *lifecycle
}

// NewOrchestrator creates an orchestrator over an explicit check registry.
func NewOrchestrator(registry *checks.Registry, fsys system.FileSystem, opts Options) *Orchestrator {
	if opts.Progress == nil {
		opts.Progress = io.Discard
	}
	if opts.ReportPath == "" {
		opts.ReportPath = config.DefaultReportPath
	}
	if opts.RunLabel == "" {
		opts.RunLabel = config.DefaultRunLabel
	}
	return &Orchestrator{
		registry: registry,
		fsys:     fsys,
		opts:     opts,
		logger:   util.GetLogger(),
		now:      time.Now,
		newID:    uuid.NewString,
		lc:       mustLifecycle(),
	}
}

// FromConfig wires the production runner and filesystem for cfg.
func FromConfig(cfg *config.Config, progress io.Writer) *Orchestrator {
	runner := system.NewExecRunner(cfg.UseSudo, cfg.AllowedBinaries()...)
	fsys := system.OSFileSystem{}
	return NewOrchestrator(checks.Default(cfg, runner, fsys), fsys, Options{
		ReportPath: cfg.ReportPath,
		RunLabel:   cfg.RunLabel,
		Progress:   progress,
	})
}

// WithLogger replaces the zap logger.
func (o *Orchestrator) WithLogger(l *zap.Logger) *Orchestrator {
	o.logger = l
	return o
}

// WithMaskedHostname hides the host name in the returned Result.
func (o *Orchestrator) WithMaskedHostname(mask bool) *Orchestrator {
	o.opts.MaskHostname = mask
	return o
}

// State reports where the orchestrator currently is.
func (o *Orchestrator) State() State {
	return o.lc.current()
}

func (o *Orchestrator) transition(event string) error {
	from, to, err := o.lc.fire(event)
	if err != nil {
		return err
	}
	o.logger.Debug("State transition", zap.Stringer("from", from), zap.Stringer("to", to))
	return nil
}

// RunAudit executes every registered check in order and writes the report.
// The only error returns are startup failures: an uncreatable report, an
// empty registry or a run already in progress. Check failures are recorded
// as findings.
func (o *Orchestrator) RunAudit(ctx context.Context) (*Result, error) {
	if err := o.transition(eventInit); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "audit already in progress: %v", err)
	}

	result := &Result{
		RunID:       o.newID(),
		Label:       o.opts.RunLabel,
		StartedAt:   o.now(),
		ReportPath:  o.opts.ReportPath,
		DeclaredMax: checks.DeclaredMaxScore,
	}

	maximum := o.registry.MaxScore()
	if maximum <= 0 {
		_ = o.transition(eventAbort)
		return nil, errors.Wrap(errors.ErrInvalidConfig, "no checks registered")
	}
	if math.Abs(maximum-checks.DeclaredMaxScore) > 1e-9 {
		result.MaxMismatched = true
		o.logger.Error("Registered check maxima do not sum to the declared maximum",
			zap.Float64("registered", maximum),
			zap.Float64("declared", checks.DeclaredMaxScore))
	}

	sink := report.New(o.opts.ReportPath)
	sink.SetClock(o.now)
	if err := sink.Init(o.opts.RunLabel, result.RunID); err != nil {
		_ = o.transition(eventAbort)
		return nil, err
	}
	defer sink.Close()

	result.Host = system.GetOSInfo(o.fsys)
	if o.opts.MaskHostname {
		result.Host.Hostname = util.MaskHostname(result.Host.Hostname)
	}

	_ = o.transition(eventRun)
	var total float64
	for _, c := range o.registry.All() {
		outcome := o.runCheck(ctx, c, sink)
		total += outcome.Score
		result.Checks = append(result.Checks, outcome)
	}

	_ = o.transition(eventSummarize)
	verdict, err := scoring.Classify(total, maximum)
	if err != nil {
		// unreachable while maximum > 0
		_ = o.transition(eventAbort)
		return nil, err
	}
	result.Verdict = verdict
	_ = scoring.WriteSummary(sink, verdict)

	if err := sink.Close(); err != nil {
		o.logger.Warn("Closing report failed", zap.Error(err))
	}
	if err := sink.Err(); err != nil {
		result.ReportErrors = sink.Failures()
		o.logger.Warn("Report is incomplete", zap.Error(err), zap.Int("failed_writes", result.ReportErrors))
	}

	result.FinishedAt = o.now()
	fmt.Fprintf(o.opts.Progress, "Audit complete. Report saved to %s\n", o.opts.ReportPath)
	_ = o.transition(eventFinish)

	o.logger.Info("Audit completed",
		zap.String("run_id", result.RunID),
		zap.Float64("score", verdict.Total),
		zap.Float64("percentage", verdict.Percentage),
		zap.Duration("duration", result.Duration()))

	return result, nil
}

// runCheck brackets one check with its progress lines, deadline and panic guard.
func (o *Orchestrator) runCheck(ctx context.Context, c checks.Check, sink *report.Sink) CheckOutcome {
	fmt.Fprintf(o.opts.Progress, "Checking %s ...\n", c.Name())
	start := o.now()

	outcome := CheckOutcome{
		Name:     c.Name(),
		Section:  c.Section(),
		MaxScore: c.MaxScore(),
	}

	score, err := o.execute(ctx, c, sink)
	if err != nil {
		outcome.Error = err.Error()
		o.logger.Error("Check aborted", zap.String("check", c.Name()), zap.Error(err))
	}
	if math.IsNaN(score) || score < 0 || score > c.MaxScore() {
		o.logger.Warn("Check returned out-of-range score",
			zap.String("check", c.Name()), zap.Float64("score", score))
		if math.IsNaN(score) || score < 0 {
			score = 0
		} else {
			score = c.MaxScore()
		}
	}
	outcome.Score = score
	outcome.Findings = sink.FindingsIn(c.Section())
	outcome.Duration = o.now().Sub(start)

	if len(outcome.Findings) == 0 {
		o.logger.Error("Check recorded no findings", zap.String("check", c.Name()))
	}

	fmt.Fprintln(o.opts.Progress, c.Marker())
	o.logger.Info("Check finished",
		zap.String("check", c.Name()),
		zap.Float64("score", score),
		zap.Duration("duration", outcome.Duration))
	return outcome
}

func (o *Orchestrator) execute(ctx context.Context, c checks.Check, sink *report.Sink) (score float64, err error) {
	checkCtx, cancel := context.WithTimeout(ctx, c.Timeout())
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			score = 0
			err = errors.Wrap(errors.ErrCheckPanicked, "%s: %v", c.Name(), r)
			if sink.CurrentSection() != c.Section() {
				sink.Section(c.Section())
			}
			sink.Add(report.SeverityError, "%s check aborted unexpectedly: %v", c.Name(), r)
		}
	}()

	return c.Run(checkCtx, sink), nil
}
