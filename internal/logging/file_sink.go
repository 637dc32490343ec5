package logging

import (
	"os"
	"sync"
)

// fileSink appends to one log file and truncates it back to empty whenever
// the next write would pass the byte cap. Crude rotation, but it bounds disk
// use without external logrotate wiring.
type fileSink struct {
	path string
	cap  int64

	mu   sync.Mutex
	file *os.File
	used int64
}

func newFileSink(path string, maxMB int) (*fileSink, error) {
	if maxMB <= 0 {
		maxMB = 10
	}
	s := &fileSink{path: path, cap: int64(maxMB) << 20}
	if err := s.open(os.O_APPEND); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *fileSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		if err := s.open(os.O_APPEND); err != nil {
			return 0, err
		}
	}
	if s.used+int64(len(p)) > s.cap {
		_ = s.file.Close()
		s.file = nil
		if err := s.open(os.O_TRUNC); err != nil {
			return 0, err
		}
	}
	n, err := s.file.Write(p)
	s.used += int64(n)
	return n, err
}

func (s *fileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func (s *fileSink) open(mode int) error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|mode, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	s.file = f
	s.used = info.Size()
	return nil
}
