package abacus

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Stats represents store statistics.
type Stats struct {
	Records     int           `json:"records"`      // Total number of records
	TotalSize   int64         `json:"totalSize"`    // Total size of all record files in bytes
	OldestWrite time.Duration `json:"oldestWrite"`  // Age of the least recently written record
	NewestWrite time.Duration `json:"newestWrite"`  // Age of the most recently written record
	Corrupt     int           `json:"corruptCount"` // Records that failed to load
}

// RecordInfo describes a single record for listing.
type RecordInfo struct {
	Key       string    `json:"key"`
	UpdatedAt time.Time `json:"updatedAt"`
	Size      int64     `json:"size"`
}

// Stats returns statistics about the store.
func (s *FileStore) Stats() (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{}
	var oldest, newest time.Time

	err := s.walkRecords(func(r *record, info os.FileInfo) {
		stats.Records++
		stats.TotalSize += info.Size()

		if oldest.IsZero() || r.UpdatedAt.Before(oldest) {
			oldest = r.UpdatedAt
		}
		if newest.IsZero() || r.UpdatedAt.After(newest) {
			newest = r.UpdatedAt
		}
	}, func() { stats.Corrupt++ })
	if err != nil {
		return Stats{}, err
	}

	now := s.now()
	if !oldest.IsZero() {
		stats.OldestWrite = now.Sub(oldest)
	}
	if !newest.IsZero() {
		stats.NewestWrite = now.Sub(newest)
	}

	return stats, nil
}

// Records lists every readable record.
func (s *FileStore) Records() ([]RecordInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var infos []RecordInfo
	err := s.walkRecords(func(r *record, info os.FileInfo) {
		infos = append(infos, RecordInfo{
			Key:       r.Key,
			UpdatedAt: r.UpdatedAt,
			Size:      info.Size(),
		})
	}, nil)
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// walkRecords loads every record file and calls fn for each.
// Records that fail to load are skipped and reported to corrupt, if set.
func (s *FileStore) walkRecords(fn func(r *record, info os.FileInfo), corrupt func()) error {
	return afero.Walk(s.fs, s.recordsDir(), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}

		r, err := s.loadRecord(path)
		if err != nil {
			if corrupt != nil {
				corrupt()
			}
			return nil
		}

		fn(r, info)
		return nil
	})
}
