package reconcile

import (
	"context"
	"log/slog"

	"github.com/grocky/dhcp-dns-sync/internal/domain"
)

// Source provides the desired domain to IP mapping.
type Source interface {
	FetchReservations(ctx context.Context) (domain.Mapping, error)
}

// Target is the DNS record store being reconciled.
type Target interface {
	Authenticate(ctx context.Context) (domain.Session, error)
	FetchRecords(ctx context.Context, sess domain.Session) (domain.Mapping, error)
	RecordWriter
}

// Verifier checks that applied records resolve as expected.
type Verifier interface {
	Verify(ctx context.Context, expected domain.Mapping) ([]domain.Mismatch, error)
}

// Config holds syncer options.
type Config struct {
	Concurrency int
	// DryRun stops after the diff and reports the actions without applying them.
	DryRun bool
	// Verifier is optional. When set, it runs over the successfully applied actions.
	Verifier Verifier
}

// Syncer runs one reconciliation: authenticate, fetch source, fetch target,
// diff, execute.
type Syncer struct {
	source   Source
	target   Target
	executor *Executor
	verifier Verifier
	dryRun   bool
	logger   *slog.Logger
}

// NewSyncer creates a new syncer.
func NewSyncer(source Source, target Target, cfg Config, logger *slog.Logger) *Syncer {
	return &Syncer{
		source:   source,
		target:   target,
		executor: NewExecutor(target, cfg.Concurrency, logger),
		verifier: cfg.Verifier,
		dryRun:   cfg.DryRun,
		logger:   logger,
	}
}

// Run performs a single reconciliation. Auth and fetch failures abort before
// any change is made. An empty diff returns domain.ErrNoActions. Execution
// failures are returned after every dispatched action has finished.
func (s *Syncer) Run(ctx context.Context) (domain.Report, error) {
	report := domain.Report{DryRun: s.dryRun}

	sess, err := s.target.Authenticate(ctx)
	if err != nil {
		return report, err
	}

	source, err := s.source.FetchReservations(ctx)
	if err != nil {
		return report, err
	}
	report.SourceRecords = len(source)

	target, err := s.target.FetchRecords(ctx, sess)
	if err != nil {
		return report, err
	}
	report.TargetRecords = len(target)

	report.Actions = Diff(source, target)
	s.logger.Info("computed actions",
		"source", report.SourceRecords,
		"target", report.TargetRecords,
		"actions", len(report.Actions),
	)

	if len(report.Actions) == 0 {
		return report, domain.ErrNoActions
	}

	if s.dryRun {
		for _, a := range report.Actions {
			s.logger.Info("would apply", "action", a.String())
		}
		return report, nil
	}

	results, execErr := s.executor.Execute(ctx, sess, report.Actions)
	report.Results = results

	if s.verifier != nil {
		report.Mismatches = s.verify(ctx, results)
	}

	return report, execErr
}

func (s *Syncer) verify(ctx context.Context, results []domain.Result) []domain.Mismatch {
	expected := make(domain.Mapping, len(results))
	for _, res := range results {
		if res.Err == nil {
			expected[res.Action.Domain] = res.Action.IP
		}
	}
	if len(expected) == 0 {
		return nil
	}

	mismatches, err := s.verifier.Verify(ctx, expected)
	if err != nil {
		s.logger.Warn("verification incomplete", "error", err, "mismatches", len(mismatches))
	}

	for _, m := range mismatches {
		s.logger.Warn("record does not resolve to expected ip",
			"domain", m.Domain,
			"expected", m.Expected,
			"got", m.Got,
		)
	}
	return mismatches
}
