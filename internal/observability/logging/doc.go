// Package logging builds slog loggers from the environment and carries a
// run-scoped logger through context.
//
//	logger := logging.NewLogger()
//	ctx = logging.WithLogger(ctx, logger.With(slog.String("run_id", runID)))
//	logging.FromContext(ctx).Info("source fetched")
package logging
