package api

import (
	"strconv"
	"strings"
)

// ParseProgressChunk reads the percentage carried by one chunk of the
// upload stream. Only the chunk's first line counts: when the transport
// merges several "<pct>\n" writes into one read, the later values in that
// read are dropped and the bar jumps at the next chunk. Completion still
// forces 100. Lines that are not an integer (such as the backend's closing
// "File processed successfully") report ok=false.
func ParseProgressChunk(chunk string) (percent int, ok bool) {
	line, _, _ := strings.Cut(chunk, "\n")
	line = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), "%"))
	if line == "" {
		return 0, false
	}

	value, err := strconv.Atoi(line)
	if err != nil {
		return 0, false
	}

	return value, true
}
