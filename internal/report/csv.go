// Package report writes the dead-link report as an append-only CSV stream.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"github.com/avsol/linkrot/internal/model"
)

// Columns is the fixed report header
var Columns = []string{"source_file", "link", "reason", "resolved_path", "reason_details"}

// CSVSink streams verification records to a CSV file. Writes are
// serialized by a mutex and flushed row by row, so concurrent probe
// completions cannot interleave a record's fields and an abrupt
// termination leaves a partial but valid report.
type CSVSink struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
	rows   int
}

// NewCSVSink creates path, truncating any previous report, and writes the
// header immediately.
func NewCSVSink(path string) (*CSVSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(Columns); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("flush header: %w", err)
	}

	return &CSVSink{file: file, writer: writer}, nil
}

// Write appends one record and flushes it to disk before returning
func (s *CSVSink) Write(rec model.VerificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := []string{rec.SourceFile, rec.Link, rec.Reason, rec.ResolvedPath, rec.Detail}
	if err := s.writer.Write(row); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return fmt.Errorf("flush record: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("sync report: %w", err)
	}

	s.rows++
	return nil
}

// Rows returns the number of records written so far
func (s *CSVSink) Rows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows
}

// Close flushes and closes the underlying file
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		_ = s.file.Close()
		return fmt.Errorf("flush report: %w", err)
	}
	return s.file.Close()
}
