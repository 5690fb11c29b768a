// Package logger holds the interpreter's debug log and its job event log.
package logger
