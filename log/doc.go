// Package log carries slog records across the module boundary.
//
// A guest encodes records as LogMessageWire JSON (WireHandler does this for
// Go guests) and passes them to the host's log_message function. The host
// decodes them and replays them into its own slog.Handler with Replay, so
// module output lands in the same structured log as the loader's.
package log
