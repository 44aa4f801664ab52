package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/grocky/dhcp-dns-sync/internal/domain"
)

// DefaultConcurrency is the number of actions applied at the same time.
const DefaultConcurrency = 2

// RecordWriter applies single record changes to the DNS store. The returned
// status is the HTTP status of the response; errors are transport failures.
type RecordWriter interface {
	AddRecord(ctx context.Context, sess domain.Session, fqdn, ip string) (int, error)
	DeleteRecord(ctx context.Context, sess domain.Session, fqdn, ip string) (int, error)
}

// Executor applies actions with bounded concurrency.
type Executor struct {
	writer      RecordWriter
	concurrency int
	logger      *slog.Logger
}

// NewExecutor creates an executor. A concurrency below 1 uses DefaultConcurrency.
func NewExecutor(writer RecordWriter, concurrency int, logger *slog.Logger) *Executor {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Executor{
		writer:      writer,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Execute applies every action and returns one result per action, in input
// order. Actions are dispatched in order; a failing action does not stop the
// others. Transport failures are returned together once all dispatched work
// has finished. Actions not yet dispatched when ctx is done are skipped.
func (e *Executor) Execute(ctx context.Context, sess domain.Session, actions []domain.Action) ([]domain.Result, error) {
	results := make([]domain.Result, len(actions))

	var g errgroup.Group
	g.SetLimit(e.concurrency)

	for i, action := range actions {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(actions); j++ {
				results[j] = domain.Result{Action: actions[j], Err: err}
			}
			break
		}

		g.Go(func() error {
			results[i] = e.apply(ctx, sess, action)
			return nil
		})
	}
	_ = g.Wait()

	var errs *multierror.Error
	for _, res := range results {
		if res.Err != nil {
			errs = multierror.Append(errs, &domain.ExecutionError{Action: res.Action, Err: res.Err})
		}
	}
	return results, errs.ErrorOrNil()
}

func (e *Executor) apply(ctx context.Context, sess domain.Session, action domain.Action) domain.Result {
	res := domain.Result{Action: action}

	switch action.Kind {
	case domain.ActionAdd:
		res.AddStatus, res.Err = e.writer.AddRecord(ctx, sess, action.Domain, action.IP)

	case domain.ActionUpdate:
		// The add is attempted whether or not the delete went through.
		status, delErr := e.writer.DeleteRecord(ctx, sess, action.Domain, action.PreviousIP)
		res.DeleteStatus = status
		if delErr != nil {
			e.logger.Warn("delete failed, adding anyway",
				"domain", action.Domain,
				"ip", action.PreviousIP,
				"error", delErr,
			)
		}

		status, addErr := e.writer.AddRecord(ctx, sess, action.Domain, action.IP)
		res.AddStatus = status
		switch {
		case addErr != nil:
			res.Err = fmt.Errorf("add: %w", addErr)
		case delErr != nil:
			res.Err = fmt.Errorf("delete: %w", delErr)
		}

	default:
		res.Err = fmt.Errorf("unknown action kind %q", action.Kind)
	}

	return res
}
