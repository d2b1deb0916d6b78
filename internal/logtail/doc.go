// Package logtail reads the tail of linkboard's JSON log file.
//
// Read keeps a ring buffer of maxLines entries, so it scans the file once and
// uses O(maxLines) memory however large the log grows. Entries below the
// requested level are dropped before they enter the ring, so asking for the
// last 50 warnings returns 50 warnings rather than the warnings among the last
// 50 lines.
//
//	entries, err := logtail.Read(cfg.LogFile, 200, zapcore.WarnLevel)
//
// Lines that are not zap JSON (panics, stray writes) are returned with only Raw
// set and are never filtered out.
package logtail
