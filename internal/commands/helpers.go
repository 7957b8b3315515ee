package commands

import (
	"os"
	"strings"
	"time"
)

// RecentActivity reads the last N lines from the log file and extracts
// editing activity: the timestamp of the most recent applied edit and
// how many edits appear in the window.
func RecentActivity(logPath string, maxLines int) ([]string, time.Time, int) {
	content, err := os.ReadFile(logPath)
	if err != nil {
		return []string{"Unable to read log file"}, time.Time{}, 0
	}

	lines := strings.Split(string(content), "\n")

	startIdx := 0
	if len(lines) > maxLines {
		startIdx = len(lines) - maxLines
	}
	recentLines := lines[startIdx:]

	var lastEdit time.Time
	editCount := 0

	for _, line := range recentLines {
		if !strings.Contains(line, "structural edit applied") {
			continue
		}
		editCount++
		// Format: 2026-08-25 14:11:57 INFO structural edit applied
		if len(line) > 19 {
			if t, err := time.Parse("2006-01-02 15:04:05", line[:19]); err == nil {
				lastEdit = t
			}
		}
	}

	return recentLines, lastEdit, editCount
}
