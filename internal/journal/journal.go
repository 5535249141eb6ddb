// Package journal keeps an append-only record of moderation actions
// (movies added, ratings removed by an admin) as JSON lines on disk.
package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/reelscore/backend/pkg/logger"
	"go.uber.org/zap"
)

type Action string

const (
	ActionMovieAdded    Action = "movie_added"
	ActionRatingDeleted Action = "rating_deleted"
)

// Entry is one moderation event.
type Entry struct {
	Action    Action    `json:"action"`
	ActorID   uint      `json:"actor_id"`
	TargetID  uint      `json:"target_id"`
	OwnerID   uint      `json:"owner_id,omitempty"`
	MovieID   uint      `json:"movie_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Journal struct {
	filePath string
	file     *os.File
	mu       sync.Mutex
}

// Open opens (or creates) the journal file in append mode.
func Open(filePath string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &Journal{
		filePath: filePath,
		file:     file,
	}, nil
}

// Append writes entry and syncs it to disk before returning.
func (j *Journal) Append(entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	start := time.Now()
	if _, err := j.file.Write(append(data, '\n')); err != nil {
		logger.Log.Error("Journal: failed to write entry",
			zap.String("action", string(entry.Action)),
			zap.Uint("target_id", entry.TargetID),
			zap.Error(err),
		)
		return err
	}
	if err := j.file.Sync(); err != nil {
		logger.Log.Error("Journal: failed to sync to disk",
			zap.String("action", string(entry.Action)),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Debug("Journal: entry written",
		zap.String("action", string(entry.Action)),
		zap.Uint("actor_id", entry.ActorID),
		zap.Uint("target_id", entry.TargetID),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// ReadAll returns every entry in write order. Lines that fail to decode are skipped.
func (j *Journal) ReadAll() ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	file, err := os.Open(j.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, err
	}
	defer file.Close()

	entries := []Entry{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			logger.Log.Warn("Journal: skipping corrupt line", zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}

	return entries, scanner.Err()
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}
