// Package datastore is a small JSON file backed key-value store. Values are
// kept as raw JSON in memory, saved periodically and on Close, and written
// atomically (temp file + rename) with rotating backups.
package datastore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var ErrClosed = errors.New("datastore is closed")

// Config holds configuration options for the DataStore
type Config struct {
	FilePath         string
	AutoSaveInterval time.Duration
	BackupCount      int // Number of backup files to keep
	Logger           *log.Logger
}

// DefaultConfig returns a default configuration
func DefaultConfig(filePath string) Config {
	return Config{
		FilePath:         filePath,
		AutoSaveInterval: 10 * time.Second,
		BackupCount:      3,
	}
}

type DataStore struct {
	mu           sync.RWMutex
	data         map[string]json.RawMessage
	file         string
	config       Config
	log          *log.Logger
	lastChecksum string

	cancel context.CancelFunc
	wg     sync.WaitGroup

	closeMu sync.RWMutex
	closed  bool
}

// New creates a new DataStore with default configuration
func New(filePath string) (*DataStore, error) {
	return NewWithConfig(DefaultConfig(filePath))
}

// NewWithConfig creates a new DataStore, loading the file when it exists
// and creating an empty one otherwise.
func NewWithConfig(config Config) (*DataStore, error) {
	if config.FilePath == "" {
		return nil, errors.New("file path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("datastore")
	}

	ds := &DataStore{
		data:   make(map[string]json.RawMessage),
		file:   config.FilePath,
		config: config,
		log:    logger,
	}

	_, err := os.Stat(config.FilePath)
	switch {
	case os.IsNotExist(err):
		if err := ds.writeFileAtomic([]byte("{}")); err != nil {
			return nil, fmt.Errorf("failed to create empty JSON file: %w", err)
		}
	case err == nil:
		if err := ds.loadFromFile(); err != nil {
			return nil, fmt.Errorf("failed to load data from file: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to check file existence: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ds.cancel = cancel

	if config.AutoSaveInterval > 0 {
		ds.wg.Add(1)
		go ds.autoSave(ctx)
	}

	return ds, nil
}

// Put marshals value and stores it under key.
func (ds *DataStore) Put(key string, value any) error {
	if ds.isClosed() {
		return ErrClosed
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %q: %w", key, err)
	}

	ds.mu.Lock()
	ds.data[key] = raw
	ds.mu.Unlock()
	return nil
}

// Get unmarshals the value stored under key into out. It reports false when
// the key is absent.
func (ds *DataStore) Get(key string, out any) (bool, error) {
	if ds.isClosed() {
		return false, ErrClosed
	}

	ds.mu.RLock()
	raw, ok := ds.data[key]
	ds.mu.RUnlock()
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("failed to unmarshal %q: %w", key, err)
	}
	return true, nil
}

// Update runs fn on the current value of key under the write lock, so
// read-modify-write cycles cannot interleave. fn receives nil when the key is
// absent and returns the new raw value.
func (ds *DataStore) Update(key string, fn func(current json.RawMessage) (json.RawMessage, error)) error {
	if ds.isClosed() {
		return ErrClosed
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()

	next, err := fn(ds.data[key])
	if err != nil {
		return err
	}
	ds.data[key] = next
	return nil
}

// Delete removes a key-value pair
func (ds *DataStore) Delete(key string) error {
	if ds.isClosed() {
		return ErrClosed
	}

	ds.mu.Lock()
	delete(ds.data, key)
	ds.mu.Unlock()
	return nil
}

// Keys returns the stored keys in sorted order.
func (ds *DataStore) Keys() []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	keys := make([]string, 0, len(ds.data))
	for k := range ds.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SaveToFile forces an immediate save to disk
func (ds *DataStore) SaveToFile() error {
	if ds.isClosed() {
		return ErrClosed
	}
	return ds.saveToFile()
}

// Close stops the autosave loop and performs a final save.
func (ds *DataStore) Close() error {
	ds.closeMu.Lock()
	if ds.closed {
		ds.closeMu.Unlock()
		return nil
	}
	ds.closed = true
	ds.closeMu.Unlock()

	ds.cancel()
	ds.wg.Wait()

	return ds.saveToFile()
}

func (ds *DataStore) isClosed() bool {
	ds.closeMu.RLock()
	defer ds.closeMu.RUnlock()
	return ds.closed
}

// saveToFile writes the data set when it changed since the last save.
func (ds *DataStore) saveToFile() error {
	ds.mu.RLock()
	data, err := json.MarshalIndent(ds.data, "", "  ")
	ds.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	checksum := calculateChecksum(data)
	if checksum == ds.lastChecksum {
		return nil
	}

	if ds.config.BackupCount > 0 {
		if err := ds.createBackup(); err != nil {
			ds.log.Warn("Failed to create backup", "err", err)
		}
	}

	if err := ds.writeFileAtomic(data); err != nil {
		return err
	}

	ds.lastChecksum = checksum
	return nil
}

func (ds *DataStore) loadFromFile() error {
	data, err := os.ReadFile(ds.file)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var temp map[string]json.RawMessage
	if err := json.Unmarshal(data, &temp); err != nil {
		return fmt.Errorf("invalid JSON format: %w", err)
	}
	if temp == nil {
		temp = make(map[string]json.RawMessage)
	}

	ds.mu.Lock()
	ds.data = temp
	ds.mu.Unlock()
	ds.lastChecksum = calculateChecksum(data)
	return nil
}

// writeFileAtomic performs atomic file write using temporary file and rename
func (ds *DataStore) writeFileAtomic(data []byte) error {
	tmpFile := ds.file + ".tmp"

	f, err := os.OpenFile(tmpFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpFile)
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpFile)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	f.Close()

	if err := os.Rename(tmpFile, ds.file); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func (ds *DataStore) createBackup() error {
	src, err := os.Open(ds.file)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer src.Close()

	backup := fmt.Sprintf("%s.backup.%d", ds.file, time.Now().UnixNano())
	dst, err := os.Create(backup)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}

	ds.cleanupOldBackups()
	return nil
}

// cleanupOldBackups removes the oldest backups beyond BackupCount.
func (ds *DataStore) cleanupOldBackups() {
	matches, err := filepath.Glob(ds.file + ".backup.*")
	if err != nil || len(matches) <= ds.config.BackupCount {
		return
	}

	type fileInfo struct {
		path    string
		modTime time.Time
	}

	files := make([]fileInfo, 0, len(matches))
	for _, match := range matches {
		if info, err := os.Stat(match); err == nil {
			files = append(files, fileInfo{match, info.ModTime()})
		}
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})

	for i := 0; i < len(files)-ds.config.BackupCount; i++ {
		os.Remove(files[i].path)
	}
}

func (ds *DataStore) autoSave(ctx context.Context) {
	defer ds.wg.Done()

	ticker := time.NewTicker(ds.config.AutoSaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ds.saveToFile(); err != nil {
				ds.log.Error("Auto-save failed", "err", err)
			}
		}
	}
}

func calculateChecksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
