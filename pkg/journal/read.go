package journal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

const maxLineSize = 4 * 1024 * 1024

// Decode reads entries from r, skipping lines that are not well-formed
// entries. It returns the entries in file order and the number of skipped
// lines.
func Decode(r io.Reader) (entries []Entry, skipped int, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		e, perr := ParseLine(line)
		if perr != nil {
			skipped++
			continue
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return entries, skipped, fmt.Errorf("journal: scan: %w", err)
	}
	return entries, skipped, nil
}

// ReadDay reads a day file. A missing file is reported as os.ErrNotExist.
func ReadDay(path string) (entries []Entry, skipped int, err error) {
	f, err := os.Open(path) //nolint:gosec // path built from configured root
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, fmt.Errorf("journal: %s: %w", path, os.ErrNotExist)
		}
		return nil, 0, fmt.Errorf("journal: open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}
