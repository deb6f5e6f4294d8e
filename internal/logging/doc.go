// Package logging provides structured logging for dmdash.
//
// The [Logger] type wraps log/slog with a JSON handler. Child loggers add
// persistent attributes so every line from the summary effect or the view
// store carries the project and view it concerns:
//
//	logger, err := logging.NewLogger(cfg.LogDir(), cfg.Logging.Level)
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.WithProject(12).WithView("a1b2").Warn("boxes fetch failed", "error", err)
//
// Components accept a nil *Logger and substitute [NopLogger] via [OrNop].
package logging
