package logging

import (
	"io"
	"sync"

	"go.uber.org/zap"
)

type LogsExporter interface {
	Export(io.Writer, bool) error
}

type logLine []byte

// memoryLogs is a ring of the last written log lines
type memoryLogs struct {
	mutex sync.Mutex
	lines []logLine
	next  int
	count int
}

func NewMemoryLogger(size int) zap.Sink {
	if size < 1 {
		size = 1
	}
	return &memoryLogs{
		lines: make([]logLine, size),
	}
}

func (m *memoryLogs) Write(p []byte) (n int, err error) {
	l := make(logLine, len(p))
	copy(l, p)
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.lines[m.next] = l
	m.next = (m.next + 1) % len(m.lines)
	if m.count < len(m.lines) {
		m.count++
	}
	return len(p), nil
}

func (m *memoryLogs) Sync() error {
	return nil
}

func (m *memoryLogs) Close() error {
	return nil
}

func (m *memoryLogs) Export(w io.Writer, reverse bool) error {
	for _, l := range m.snapshot(reverse) {
		if _, err := w.Write(l); err != nil {
			return err
		}
	}
	return nil
}

func (m *memoryLogs) snapshot(reverse bool) []logLine {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	size := len(m.lines)
	first := (m.next - m.count + size) % size
	out := make([]logLine, m.count)
	for i := 0; i < m.count; i++ {
		l := m.lines[(first+i)%size]
		if reverse {
			out[m.count-i-1] = l
		} else {
			out[i] = l
		}
	}
	return out
}
