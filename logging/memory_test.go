package logging

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExport(t *testing.T) {
	data := []struct {
		size     int
		written  []string
		reverse  bool
		expected []string
	}{
		{size: 10, written: []string{"first", "second", "third"}, expected: []string{"first", "second", "third"}},
		{size: 10, written: []string{"first", "second", "third"}, reverse: true, expected: []string{"third", "second", "first"}},
		{size: 2, written: []string{"first", "second", "third"}, expected: []string{"second", "third"}},
		{size: 2, written: []string{"first", "second", "third"}, reverse: true, expected: []string{"third", "second"}},
		{size: 3, written: []string{"a", "b", "c", "d", "e", "f", "g"}, expected: []string{"e", "f", "g"}},
		{size: 3, written: nil, expected: nil},
	}
	for i, d := range data {
		m := NewMemoryLogger(d.size).(*memoryLogs)
		for _, s := range d.written {
			if _, err := m.Write([]byte(s)); err != nil {
				t.Fatalf("#%d: failed to write '%s': %s", i, s, err)
			}
		}
		var c collector
		if err := m.Export(&c, d.reverse); err != nil {
			t.Fatalf("#%d: failed to export logs from memory: %s", i, err)
		}
		assert.Equal(t, d.expected, []string(c), "#%d", i)
	}
}

func TestConcurrentWrites(t *testing.T) {
	m := NewMemoryLogger(50).(*memoryLogs)
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				m.Write([]byte(fmt.Sprintf("%d-%d", g, i)))
			}
		}(g)
	}
	wg.Wait()
	var c collector
	assert.NoError(t, m.Export(&c, false))
	assert.Len(t, c, 50)
}

type collector []string

func (c *collector) Write(data []byte) (int, error) {
	*c = append(*c, string(data))
	return len(data), nil
}
