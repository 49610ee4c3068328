// Package memorywriter keeps a detailed log in memory: a rotating window
// of recent lines plus a fixed number of lines from startup. The driver
// logs per-frame decisions here, which would be far too much for a file,
// and the status server dumps the buffer on demand for bug reports.
package memorywriter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// hard cap per line, so a runaway caller cannot grow memory
const maxLineLength = 500

type MemoryWriter struct {
	mutex sync.Mutex

	maxLineCount int
	lines        [][]byte // lines include newlines

	startCount int
	startLines [][]byte

	startTime time.Time
	printTime bool

	mirror io.Writer // optional; receives every line (verbose mode)
}

func New(size, startSize int, printTime bool, mirror io.Writer) (*MemoryWriter, error) {
	if size < 1 || startSize < 1 {
		return nil, errors.New("memorywriter size cannot be <1")
	}
	return &MemoryWriter{
		maxLineCount: size,
		lines:        make([][]byte, 0, size),
		startCount:   startSize,
		startLines:   make([][]byte, 0, startSize),
		startTime:    time.Now(),
		printTime:    printTime,
		mirror:       mirror,
	}, nil
}

// Log remembers one line.
func (m *MemoryWriter) Log(s string) {
	_, err := m.Write([]byte(s + "\n"))
	if err != nil {
		// give up, just print on stdout
		fmt.Println(err)
	}
}

func (m *MemoryWriter) Write(p []byte) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if len(p) > maxLineLength {
		p = p[:maxLineLength]
	}

	var line []byte
	if m.printTime {
		now := time.Now()
		elapsed := now.Sub(m.startTime)
		line = []byte(fmt.Sprintf("[%.6f : %s] %s",
			elapsed.Seconds(), now.Format("15:04:05"), string(p)))
	} else {
		line = make([]byte, len(p))
		copy(line, p)
	}

	if len(m.startLines) < m.startCount {
		m.startLines = append(m.startLines, line)
	} else {
		for len(m.lines) >= m.maxLineCount {
			m.lines = m.lines[1:]
		}
		m.lines = append(m.lines, line)
	}

	if m.mirror != nil {
		if _, err := m.mirror.Write(line); err != nil {
			fmt.Println(err)
		}
	}
	return len(p), nil
}

// writeTo exports the remembered lines, latest first, with the start
// lines at the bottom. The header goes on top (version, device table).
func (m *MemoryWriter) writeTo(header string, w io.Writer) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, err := w.Write([]byte(header)); err != nil {
		return err
	}
	for i := len(m.lines) - 1; i >= 0; i-- {
		if _, err := w.Write(m.lines[i]); err != nil {
			return err
		}
	}
	if _, err := w.Write([]byte("...\n")); err != nil {
		return err
	}
	for i := len(m.startLines) - 1; i >= 0; i-- {
		if _, err := w.Write(m.startLines[i]); err != nil {
			return err
		}
	}
	return nil
}

// String exports the log as text with the given header on top.
func (m *MemoryWriter) String(header string) (string, error) {
	var b bytes.Buffer
	if err := m.writeTo(header, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}
