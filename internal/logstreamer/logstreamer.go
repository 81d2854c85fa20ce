// Package logstreamer turns a subprocess's stdout/stderr pipe into discrete,
// task-prefixed lines printed to a shared writer.
package logstreamer

import (
	"bytes"
	"io"
	"strings"
)

// Streamer accumulates bytes written to it and emits one prefixed record per
// complete line to an underlying writer. It implements io.Writer so it can be
// handed directly to an io.Copy reading a subprocess pipe.
type Streamer struct {
	out    io.Writer
	prefix string
	buf    bytes.Buffer
}

// New returns a Streamer that prefixes every complete line written to it
// with "prefix: " before forwarding it to out.
func New(out io.Writer, prefix string) *Streamer {
	return &Streamer{out: out, prefix: prefix}
}

// Write buffers p and flushes any complete lines it now contains.
func (s *Streamer) Write(p []byte) (int, error) {
	n, err := s.buf.Write(p)
	if err != nil {
		return n, err
	}
	if err := s.drainLines(); err != nil {
		return n, err
	}
	return n, nil
}

// Close flushes any remaining buffered partial line as a final record.
func (s *Streamer) Close() error {
	if s.buf.Len() == 0 {
		return nil
	}
	line := s.buf.String()
	s.buf.Reset()
	return s.emit(line)
}

func (s *Streamer) drainLines() error {
	for {
		line, err := s.buf.ReadString('\n')
		if len(line) > 0 {
			if strings.HasSuffix(line, "\n") {
				if emitErr := s.emit(line); emitErr != nil {
					return emitErr
				}
			} else {
				// Incomplete line: put it back until Close/the next Write
				// completes it.
				s.buf.WriteString(line)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (s *Streamer) emit(line string) error {
	trimmed := strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(trimmed) == "" {
		return nil
	}
	_, err := io.WriteString(s.out, s.prefix+": "+trimmed+"\n")
	return err
}
