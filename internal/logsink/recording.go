package logsink

import "sync"

// NullSink discards every record. Used where a sink is required but its
// output is irrelevant (benchmarks, fire-and-forget tools).
type NullSink struct{}

func (NullSink) WriteInfo(InfoRecord) error         { return nil }
func (NullSink) WriteLocation(LocationRecord) error { return nil }
func (NullSink) Close() error                       { return nil }

// RecordingSink accumulates every record in memory for test assertions.
// Safe for concurrent use.
type RecordingSink struct {
	mu        sync.Mutex
	Info      []InfoRecord
	Locations []LocationRecord
}

// NewRecordingSink creates an empty RecordingSink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

func (s *RecordingSink) WriteInfo(rec InfoRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Info = append(s.Info, rec)
	return nil
}

func (s *RecordingSink) WriteLocation(rec LocationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Locations = append(s.Locations, rec)
	return nil
}

func (s *RecordingSink) Close() error { return nil }
