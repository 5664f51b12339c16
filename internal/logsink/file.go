package logsink

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileSink writes to two append-only files under a directory, one handle
// per stream, each appended under its own mutex so rows from concurrent
// connections never interleave — the multi-connection analogue of the
// teacher's single-file logRawData-plus-Sync pattern.
type FileSink struct {
	infoMu   sync.Mutex
	infoFile *os.File

	locationMu   sync.Mutex
	locationFile *os.File
}

// NewFileSink opens (creating if necessary) server_log.txt and
// location_log.txt under dir in append mode.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("logsink: create log dir: %w", err)
	}

	infoFile, err := os.OpenFile(filepath.Join(dir, "server_log.txt"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("logsink: open server_log.txt: %w", err)
	}

	locationFile, err := os.OpenFile(filepath.Join(dir, "location_log.txt"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		infoFile.Close()
		return nil, fmt.Errorf("logsink: open location_log.txt: %w", err)
	}

	return &FileSink{infoFile: infoFile, locationFile: locationFile}, nil
}

// WriteInfo implements Sink.
func (s *FileSink) WriteInfo(rec InfoRecord) error {
	line := fmt.Sprintf("%s\t%s\t%s\t%s\t%s\n",
		rec.Timestamp.Format("2006/01/02 15:04:05"), rec.PeerAddr, rec.IMEI, rec.Direction, rec.HexFrame)

	s.infoMu.Lock()
	defer s.infoMu.Unlock()

	if _, err := s.infoFile.WriteString(line); err != nil {
		return fmt.Errorf("logsink: write info record: %w", err)
	}
	return s.infoFile.Sync()
}

// WriteLocation implements Sink.
func (s *FileSink) WriteLocation(rec LocationRecord) error {
	p := rec.Position
	line := fmt.Sprintf("%s\t%s\t%s\t%s\t%d\t%d\t%.6f\t%.6f\t%.1f\t%d\t%d\n",
		rec.Timestamp.Format("2006/01/02 15:04:05"), rec.PeerAddr, rec.IMEI,
		p.Method, int(p.Validity), p.NbSat, p.Latitude, p.Longitude, p.Accuracy, p.Speed, p.Heading)

	s.locationMu.Lock()
	defer s.locationMu.Unlock()

	if _, err := s.locationFile.WriteString(line); err != nil {
		return fmt.Errorf("logsink: write location record: %w", err)
	}
	return s.locationFile.Sync()
}

// Close implements Sink.
func (s *FileSink) Close() error {
	err1 := s.infoFile.Close()
	err2 := s.locationFile.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
