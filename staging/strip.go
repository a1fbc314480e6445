package staging

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// StripRequires copies a package descriptor from r to w, leaving out its
// requires block. The block starts at a line reading exactly "requires {" and
// ends at the next line reading exactly "}". Trailing blanks are ignored when
// matching and line endings are written as "\n".
func StripRequires(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	out := bufio.NewWriter(w)

	inRequires := false
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimRight(line, " \t\r")
		if inRequires {
			if trimmed == "}" {
				inRequires = false
			}
			continue
		}
		if trimmed == "requires {" {
			inRequires = true
			continue
		}
		if _, err := out.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return out.Flush()
}

// StripRequiresFile writes the requires-stripped form of src to dst.
func StripRequiresFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open descriptor: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create stripped descriptor: %w", err)
	}

	if err := StripRequires(in, out); err != nil {
		out.Close()
		return fmt.Errorf("failed to strip %s: %w", src, err)
	}
	return out.Close()
}
