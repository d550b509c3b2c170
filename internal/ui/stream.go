package ui

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// PrefixWriter buffers output by line and writes each complete line to dest
// under a shared lock, prefixed with [name]. It lets several projects be
// scheduled concurrently without interleaving partial lines.
type PrefixWriter struct {
	prefix string
	dest   io.Writer
	mu     *sync.Mutex
	buf    []byte
}

// NewPrefixWriter creates a PrefixWriter that prefixes output with [name].
func NewPrefixWriter(name string, dest io.Writer, mu *sync.Mutex) *PrefixWriter {
	return &PrefixWriter{
		prefix: FilePrefix(name) + " ",
		dest:   dest,
		mu:     mu,
	}
}

func (pw *PrefixWriter) Write(p []byte) (int, error) {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	pw.buf = append(pw.buf, p...)
	for {
		idx := bytes.IndexByte(pw.buf, '\n')
		if idx == -1 {
			break
		}
		line := string(pw.buf[:idx])
		pw.buf = pw.buf[idx+1:]
		if err := pw.writeLine(line); err != nil {
			return len(p), err
		}
	}
	return len(p), nil
}

// Flush writes any trailing partial line.
func (pw *PrefixWriter) Flush() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if len(pw.buf) == 0 {
		return nil
	}
	line := string(pw.buf)
	pw.buf = nil
	return pw.writeLine(line)
}

func (pw *PrefixWriter) writeLine(text string) error {
	_, err := fmt.Fprintf(pw.dest, "%s%s\n", pw.prefix, text)
	return err
}
