// Package templates loads sentence templates from files.
package templates

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadTemplates reads one template per line from the provided file path. Blank lines and lines
// starting with '#' are skipped, as are lines rejected by keep.
func LoadTemplates(path string, keep FilterFunc) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only template list.
			_ = cerr
		}
	}()
	return ReadTemplates(file, keep)
}

// ReadTemplates reads templates from r like LoadTemplates.
func ReadTemplates(r io.Reader, keep FilterFunc) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if keep != nil && !keep(line) {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("template list is empty")
	}
	return out, nil
}
