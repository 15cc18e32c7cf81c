package service

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/metrics"
	"github.com/zack12Ali/sb1-a2fvdq/internal/util"
	"go.uber.org/zap"
)

const defaultStoreTimeout = 5 * time.Second

// storeContext bounds a single store call.
func storeContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// storeError maps a failed store call onto the error taxonomy. AppErrors raised by the
// repository (not found, forbidden) pass through unchanged.
func storeError(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}

	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	if stderrors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		metrics.StoreTimeouts.WithLabelValues(op).Inc()
		util.Logger.Warn("store call timed out", zap.String("operation", op), zap.Error(err))
		return errors.Timeout("the store did not answer in time, please try again", err)
	}

	util.Logger.Error("store call failed", zap.String("operation", op), zap.Error(err))
	return errors.Persistence("failed to "+op, err)
}
