// Package logging provides the slog setup shared by the daemon and CLI.
//
// Two handler flavors exist: a human-oriented console handler and a JSON
// handler for log files and pipes. Format "auto" picks console when stdout
// is a terminal. Fanout and session handlers tee records to per-job log
// files under the log directory.
package logging
