package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

const (
	historyFileName = "watermarks.json"
	historyDirName  = "nikkei-bot"
)

// fileState is the on-disk layout: domain -> field -> value.
type fileState map[string]map[string]int64

// FileStore keeps values in a JSON document.
type FileStore struct {
	mutex    sync.Mutex
	state    fileState
	filePath string
	logger   *zap.Logger
}

// NewFileStore opens the JSON store at path, defaulting to a file under the
// system temp directory when path is empty.
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	if path == "" {
		path = filepath.Join(os.TempDir(), historyDirName, historyFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory %s: %w", filepath.Dir(path), err)
	}

	s := &FileStore{
		state:    make(fileState),
		filePath: path,
		logger:   logger,
	}
	s.load()
	return s, nil
}

func (s *FileStore) load() {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("history file not found, starting fresh", zap.String("path", s.filePath))
			return
		}
		s.logger.Warn("failed to read history file, starting fresh", zap.String("path", s.filePath), zap.Error(err))
		return
	}

	var loaded fileState
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.logger.Warn("failed to unmarshal history file, starting fresh", zap.String("path", s.filePath), zap.Error(err))
		return
	}
	if loaded != nil {
		s.state = loaded
	}
}

// save writes through a temp file so a crash never leaves a torn document.
func (s *FileStore) save() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		return fmt.Errorf("failed to replace history file %s: %w", s.filePath, err)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, key Key) (int64, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	v, ok := s.state[key.Domain][key.Field]
	return v, ok, nil
}

func (s *FileStore) Set(_ context.Context, key Key, value int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	fields := s.state[key.Domain]
	if fields == nil {
		fields = make(map[string]int64)
		s.state[key.Domain] = fields
	}
	prev, had := fields[key.Field]
	fields[key.Field] = value

	if err := s.save(); err != nil {
		if had {
			fields[key.Field] = prev
		} else {
			delete(fields, key.Field)
		}
		return err
	}
	return nil
}

func (s *FileStore) Path() string {
	return s.filePath
}

func (s *FileStore) Close() error { return nil }
