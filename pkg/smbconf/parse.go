package smbconf

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/marmos91/smbmanager/internal/logger"
)

var (
	sectionPattern  = regexp.MustCompile(`^\[(.+)\]$`)
	keyValuePattern = regexp.MustCompile(`^([^=]+)=(.*)$`)
)

// Parse builds a Snapshot from the lines of a `net conf list` listing.
//
// Parsing never fails. Lines that are neither a section header nor a
// key/value pair are logged and counted in Snapshot.Skipped, and so are
// '#' and ';' comment lines. Key/value lines that appear before any section
// header belong to the global section.
// Re-opening a section adds to the keys it already has; a repeated key keeps
// the last value.
func Parse(lines []string) *Snapshot {
	s := newSnapshot()
	current := s.global

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if line[0] == '#' || line[0] == ';' {
			s.skip(i, raw)
			continue
		}

		if m := sectionPattern.FindStringSubmatch(line); m != nil {
			name := strings.TrimSpace(m[1])
			if name == "" {
				s.skip(i, raw)
				continue
			}
			current = s.open(name)
			continue
		}

		if m := keyValuePattern.FindStringSubmatch(line); m != nil {
			key := NormalizeKey(m[1])
			if key == "" {
				s.skip(i, raw)
				continue
			}
			current[key] = strings.TrimSpace(m[2])
			continue
		}

		s.skip(i, raw)
	}

	return s
}

// ParseText splits text on newlines and parses it.
func ParseText(text string) *Snapshot {
	return Parse(strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n"))
}

// ParseReader reads all lines from r and parses them.
func ParseReader(r io.Reader) (*Snapshot, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return Parse(lines), nil
}

func (s *Snapshot) skip(idx int, raw string) {
	s.skipped++
	logger.Debug("Ignoring unrecognized config line", logger.LineNo(idx+1), logger.Line(raw))
}
