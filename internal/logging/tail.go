package logging

import (
	"bufio"
	"os"
)

const (
	// MaxLineLength is the maximum length of a single log line before truncation.
	MaxLineLength = 4096
)

// Tail returns the last n lines of the file at path. It is used to surface
// the tail of a failed process's log in the exit summary without loading the
// whole file into memory as lines accumulate.
func Tail(path string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Ring of the last n lines.
	ring := make([]string, n)
	count := 0

	scanner := bufio.NewScanner(f)
	buf := make([]byte, MaxLineLength)
	scanner.Buffer(buf, MaxLineLength)

	for scanner.Scan() {
		line := scanner.Text()
		if len(line) > MaxLineLength {
			line = line[:MaxLineLength] + "...(truncated)"
		}
		ring[count%n] = line
		count++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if count == 0 {
		return nil, nil
	}
	if count <= n {
		return ring[:count], nil
	}

	// Unroll the ring so lines come out in file order.
	out := make([]string, 0, n)
	for i := count - n; i < count; i++ {
		out = append(out, ring[i%n])
	}
	return out, nil
}
