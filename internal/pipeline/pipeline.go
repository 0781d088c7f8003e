package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SaadHafeez466/qa-app/internal/apperrors"
	"github.com/SaadHafeez466/qa-app/internal/logger"
	"github.com/SaadHafeez466/qa-app/internal/testcase"
)

// CompleteFunc asks the completion service for one category's test cases
// and returns the raw response text.
type CompleteFunc func(ctx context.Context, category testcase.Category, narrative string) (string, error)

// Observer receives progress as a percentage in [0, 100) and a status line.
// It may be called from a goroutine other than the one that started the run.
type Observer interface {
	Progress(percent int, status string)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(percent int, status string)

// Progress calls f.
func (f ObserverFunc) Progress(percent int, status string) {
	f(percent, status)
}

type nopObserver struct{}

func (nopObserver) Progress(int, string) {}

// Run issues one completion per category, in order, and concatenates the
// parsed rows. A completion error aborts the run and no rows are returned.
// A response that cannot be parsed contributes zero rows.
func Run(ctx context.Context, req testcase.Request, complete CompleteFunc, observer Observer) (testcase.Result, error) {
	return run(ctx, req, complete, observer, logger.Discard())
}

func run(ctx context.Context, req testcase.Request, complete CompleteFunc, observer Observer, log *logger.Logger) (testcase.Result, error) {
	const op = "pipeline.Run"

	if complete == nil {
		return nil, apperrors.New(op, apperrors.ErrInvalidInput, "no completion function")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if observer == nil {
		observer = nopObserver{}
	}

	total := len(req.Categories)
	var result testcase.Result

	for i, category := range req.Categories {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Kind(op, apperrors.ErrCompletion, err, "run stopped before %q", category)
		}

		observer.Progress(i*100/total, fmt.Sprintf("Generating %s...", category))

		catLog := log.WithFields(slog.String("category", string(category)))

		text, err := complete(ctx, category, req.Narrative)
		if err != nil {
			catLog.Debug("completion failed", "error", err)
			return nil, apperrors.Kind(op, apperrors.ErrCompletion, err, "generating %q", category)
		}

		rows, err := testcase.ParseResponse(text, category)
		if err != nil {
			catLog.Warn("response could not be parsed, skipping category", "error", err)
			continue
		}

		catLog.Debug("category parsed",
			slog.Int("rows", len(rows)),
			slog.Int("index", i+1),
			slog.Int("total", total))
		result = append(result, rows...)
	}

	return result, nil
}
