package dataset

import (
	"context"
	"io"
)

// Row is one record keyed by column name.
type Row map[string]string

// Chunk is a batch of rows. Offset is the zero-based index of the first row
// in the whole input, used for error reporting.
type Chunk struct {
	Offset int
	Rows   []Row
}

// ChunkSource yields row chunks on demand. Next returns io.EOF after the last
// chunk. Callers request the next chunk only after finishing the current one.
type ChunkSource interface {
	Next(ctx context.Context) (Chunk, error)
}

// SliceSource serves in-memory rows in fixed-size chunks.
type SliceSource struct {
	rows      []Row
	chunkSize int
	pos       int
}

// NewSliceSource creates a source over rows. chunkSize <= 0 means 1000.
func NewSliceSource(rows []Row, chunkSize int) *SliceSource {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	return &SliceSource{rows: rows, chunkSize: chunkSize}
}

// Next returns the next chunk or io.EOF.
func (s *SliceSource) Next(ctx context.Context) (Chunk, error) {
	if err := ctx.Err(); err != nil {
		return Chunk{}, err
	}
	if s.pos >= len(s.rows) {
		return Chunk{}, io.EOF
	}
	end := s.pos + s.chunkSize
	if end > len(s.rows) {
		end = len(s.rows)
	}
	chunk := Chunk{Offset: s.pos, Rows: s.rows[s.pos:end]}
	s.pos = end
	return chunk, nil
}

// RecordSet is a named table with its column profiles and the raw values of
// each column, used by relationship detection.
type RecordSet struct {
	Name    string
	Columns []ColumnProfile
	Values  map[string][]string
}

// NewRecordSet profiles every column of rows. Column order follows columns.
func NewRecordSet(name string, columns []string, rows []Row, opts ProfileOptions) RecordSet {
	rs := RecordSet{Name: name, Values: make(map[string][]string, len(columns))}
	for _, col := range columns {
		values := make([]string, len(rows))
		for i, r := range rows {
			values[i] = r[col]
		}
		rs.Values[col] = values
		rs.Columns = append(rs.Columns, ProfileColumn(col, values, opts))
	}
	return rs
}

// Column returns the profile of a column by name.
func (rs RecordSet) Column(name string) (ColumnProfile, bool) {
	for _, c := range rs.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnProfile{}, false
}

// PrimaryKeyCandidate returns the best identifier column: identifier-flagged
// columns first, then the most unique column named like an id, preferring
// fewer nulls. ok is false when no column is fully unique.
func (rs RecordSet) PrimaryKeyCandidate() (ColumnProfile, bool) {
	var best ColumnProfile
	bestScore := -1.0
	for _, c := range rs.Columns {
		if c.UniquenessRatio < 1.0 || c.NullRatio > 0 {
			continue
		}
		score := c.UniquenessRatio
		if c.IsIdentifier {
			score += 2
		}
		if idSuffixPattern.MatchString(c.Name) {
			score++
		}
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, bestScore >= 0
}
