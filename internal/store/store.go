package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hfdaily/paperlens/internal/cache"
	"github.com/hfdaily/paperlens/internal/model"
)

// ErrNoMetadata reports a missing metadata file for the requested day.
// Stages treat it as a missing-input condition, not a failure.
var ErrNoMetadata = errors.New("metadata file not found")

// Store is the day-keyed result store shared by the pipeline stages.
// Layout under the output directory:
//
//	metadata/{date}.json       raw fetched records
//	cleaned/{date}_clean.json  canonical papers (full-file replace)
//	reports/{date}_report.json analysis results (incremental merge)
//
// A memory cache fronts the report file so the per-item
// read-modify-append cycle only hits disk once per day file per read.
// Single logical writer per process; concurrent external writers to the
// same day's files are not supported.
type Store struct {
	dir string
	mem *cache.DayCache
}

// New creates a store rooted at the given output directory.
func New(dir string) *Store {
	return &Store{
		dir: dir,
		mem: cache.NewDayCache(30*time.Minute, 10*time.Minute),
	}
}

// Dir returns the output directory root.
func (s *Store) Dir() string {
	return s.dir
}

// MetadataPath returns the raw metadata file path for a day.
func (s *Store) MetadataPath(date string) string {
	return filepath.Join(s.dir, "metadata", date+".json")
}

// CleanedPath returns the cleaned data file path for a day.
func (s *Store) CleanedPath(date string) string {
	return filepath.Join(s.dir, "cleaned", date+"_clean.json")
}

// ReportPath returns the analysis report file path for a day.
func (s *Store) ReportPath(date string) string {
	return filepath.Join(s.dir, "reports", date+"_report.json")
}

// LoadRawRecords reads the raw metadata for a day. The file may hold a
// JSON array, a single object (wrapped into a one-element batch), or an
// object with an "error" key (an upstream failure marker, treated as an
// empty batch).
func (s *Store) LoadRawRecords(date string) ([]model.RawRecord, error) {
	data, err := os.ReadFile(s.MetadataPath(date))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoMetadata, s.MetadataPath(date))
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}

	switch v := raw.(type) {
	case []any:
		records := make([]model.RawRecord, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				records = append(records, model.RawRecord(m))
			}
		}
		return records, nil
	case map[string]any:
		if _, hasErr := v["error"]; hasErr {
			return []model.RawRecord{}, nil
		}
		return []model.RawRecord{model.RawRecord(v)}, nil
	default:
		return []model.RawRecord{}, nil
	}
}

// SaveCleaned writes the full cleaned array for a day, replacing any prior
// content.
func (s *Store) SaveCleaned(date string, papers []model.CanonicalPaper) error {
	if papers == nil {
		papers = []model.CanonicalPaper{}
	}
	return s.writeJSON(s.CleanedPath(date), papers)
}

// LoadCleaned reads the cleaned papers for a day.
func (s *Store) LoadCleaned(date string) ([]model.CanonicalPaper, error) {
	data, err := os.ReadFile(s.CleanedPath(date))
	if err != nil {
		return nil, fmt.Errorf("read cleaned data: %w", err)
	}

	var papers []model.CanonicalPaper
	if err := json.Unmarshal(data, &papers); err != nil {
		return nil, fmt.Errorf("parse cleaned data: %w", err)
	}
	return papers, nil
}

// CleanedExists reports whether the cleaned file for a day is present.
func (s *Store) CleanedExists(date string) bool {
	_, err := os.Stat(s.CleanedPath(date))
	return err == nil
}

// LoadReport reads the analysis results persisted for a day. A missing
// file is an empty report, not an error.
func (s *Store) LoadReport(date string) ([]model.AnalysisResult, error) {
	data, found := s.mem.Get("report", date)
	if !found {
		var err error
		data, err = os.ReadFile(s.ReportPath(date))
		if err != nil {
			if os.IsNotExist(err) {
				return []model.AnalysisResult{}, nil
			}
			return nil, fmt.Errorf("read report: %w", err)
		}
		s.mem.Put("report", date, data)
	}

	var results []model.AnalysisResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return results, nil
}

// ExistingIDs returns the set of paper ids already present in a day's
// report. Used by the analyzer's skip-if-exists resume check.
func (s *Store) ExistingIDs(date string) (map[string]struct{}, error) {
	results, err := s.LoadReport(date)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]struct{}, len(results))
	for _, r := range results {
		ids[r.ID] = struct{}{}
	}
	return ids, nil
}

// AppendResult persists one analysis result: the day's array is loaded,
// any entry with the same id is dropped, the new result is appended, and
// the whole file is written back. Each completed item therefore survives a
// later crash. O(n²) over a day's run, accepted for resumability at the
// item counts this pipeline sees.
func (s *Store) AppendResult(date string, result model.AnalysisResult) error {
	results, err := s.LoadReport(date)
	if err != nil {
		return err
	}

	merged := make([]model.AnalysisResult, 0, len(results)+1)
	for _, r := range results {
		if r.ID != result.ID {
			merged = append(merged, r)
		}
	}
	merged = append(merged, result)

	return s.writeJSON(s.ReportPath(date), merged)
}

// writeJSON writes a value as indented JSON, creating the parent directory
// and refreshing the memory cache for report files.
func (s *Store) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}

	// Keep the cached copy in lockstep with disk.
	if filepath.Dir(path) == filepath.Join(s.dir, "reports") {
		date := filepath.Base(path)
		date = date[:len(date)-len("_report.json")]
		s.mem.Put("report", date, data)
	}

	return nil
}

// SaveRawRecords writes fetched metadata for a day. Used by the fetcher;
// the cleaner only reads this file.
func (s *Store) SaveRawRecords(date string, data []byte) error {
	path := s.MetadataPath(date)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}
