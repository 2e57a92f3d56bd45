// Package sanitize strips secret-bearing lines from the management agent's
// own log, which unrelated agent processes write the client secret into.
package sanitize

import (
	"os"
	"strings"
)

// Scrub rewrites the file at path keeping only lines that do not contain
// marker. Kept lines are preserved byte-for-byte, in order. A missing file
// and an empty marker are both no-ops. Returns the number of removed lines.
func Scrub(path, marker string) (int, error) {
	if marker == "" {
		return 0, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	lines := strings.Split(string(raw), "\n")
	kept := make([]string, 0, len(lines))
	removed := 0
	for _, line := range lines {
		if strings.Contains(line, marker) {
			removed++
			continue
		}
		kept = append(kept, line)
	}
	if removed == 0 {
		return 0, nil
	}

	if err := os.WriteFile(path, []byte(strings.Join(kept, "\n")), info.Mode().Perm()); err != nil {
		return removed, err
	}
	return removed, nil
}
