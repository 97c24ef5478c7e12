// Command lms manages a small library catalog kept in a plain-text state
// file: books, and which student has each book on loan.
//
// One-shot subcommands (add, remove, borrow, return, import-sqlite) load the
// state file, apply a single change and save it again. The shell subcommand
// keeps the catalog in memory across many commands and saves on exit.
package main
