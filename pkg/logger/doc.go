// Package logger builds the slog loggers used by the extraction and merge
// engine and the command-line tool.
//
// Output goes to a caller-supplied writer; the CLI passes stderr because
// stdout carries catalogs and merged documents. Context extractors add
// per-run attributes to every record:
//
//	log := logger.New(os.Stderr, slog.LevelInfo, logger.RunExtractor, logger.DocumentExtractor)
//	ctx := logger.WithRunID(ctx, runID)
//	ctx = logger.WithDocument(ctx, "guide.xml")
//	log.WarnContext(ctx, "translation is not well-formed", slog.Int("line", 12))
//	// {"level":"WARN","msg":"translation is not well-formed","line":12,"run_id":"…","document":"guide.xml"}
//
// NewWithSentry additionally forwards warnings and errors to Sentry when a
// DSN is configured, and behaves like New otherwise. NewNope discards
// everything and is the library default.
package logger
