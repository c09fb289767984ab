// Package logger provides structured logging on top of Zap.
// Loggers travel in a context so that components receive the logger they
// were handed instead of reaching for a global; the package-level logger is
// only a fallback. RotatingFile adds a daily rotating file sink with bounded
// retention and an explicit Open/Sync/Rotate/Close lifecycle.
package logger
