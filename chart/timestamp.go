package chart

import "strings"

const noTimestamp = "N/A"

// FormatTimestamp pulls HH:MM:SS out of "<date>_<HH:MM:SS>.<fraction>".
// Anything that does not look like that is returned as-is.
func FormatTimestamp(ts string) string {
	if ts == "" {
		return noTimestamp
	}

	_, clock, ok := strings.Cut(ts, "_")
	if !ok {
		return ts
	}
	clock, _, _ = strings.Cut(clock, "_")
	hms, _, _ := strings.Cut(clock, ".")
	return hms
}
