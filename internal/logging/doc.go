// Package logging builds the slog loggers used by the lms commands.
//
// Console output is a compact single-line format meant for people at a
// terminal; json output is one object per line. The "auto" format picks
// console when stderr is a terminal and json otherwise. Logs go to stderr so
// they never mix with command output on stdout.
package logging
