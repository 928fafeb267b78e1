package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/Alpha4Coders/DevTrack/internal"
)

type FileStorage struct {
	logs          map[string]*internal.LogEntry   // id -> LogEntry
	userLogIndex  map[string][]*internal.LogEntry // userID -> logs, newest first
	users         map[string]*internal.User
	mu            sync.RWMutex
	logsFile      string
	usersFile     string
	saveLogsChan  chan struct{}
	saveUsersChan chan struct{}
	shutdownChan  chan struct{}
	saveDelay     time.Duration
	logger        internal.Logger
}

func NewFileStorage(logsFile, usersFile string, logger internal.Logger) (*FileStorage, error) {
	s := &FileStorage{
		logs:          make(map[string]*internal.LogEntry),
		userLogIndex:  make(map[string][]*internal.LogEntry),
		users:         make(map[string]*internal.User),
		logsFile:      logsFile,
		usersFile:     usersFile,
		saveLogsChan:  make(chan struct{}, 1),
		saveUsersChan: make(chan struct{}, 1),
		shutdownChan:  make(chan struct{}),
		saveDelay:     500 * time.Millisecond,
		logger:        logger,
	}

	if err := s.loadLogs(); err != nil {
		logger.Errorf("storage: failed to load logs: %v", err)
		return nil, err
	}
	if err := s.loadUsers(); err != nil {
		logger.Errorf("storage: failed to load users: %v", err)
		return nil, err
	}

	go s.saveWorker(s.saveLogsChan, s.saveLogs, "logs")
	go s.saveWorker(s.saveUsersChan, s.saveUsers, "users")

	return s, nil
}

func (s *FileStorage) loadLogs() error {
	file, err := os.Open(s.logsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var logs []*internal.LogEntry
	if err := json.NewDecoder(file).Decode(&logs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range logs {
		s.logs[l.ID] = l
		s.userLogIndex[l.UserID] = append(s.userLogIndex[l.UserID], l)
	}
	for userID := range s.userLogIndex {
		sort.Slice(s.userLogIndex[userID], func(i, j int) bool {
			return s.userLogIndex[userID][i].CreatedAt.After(s.userLogIndex[userID][j].CreatedAt)
		})
	}
	return nil
}

func (s *FileStorage) loadUsers() error {
	file, err := os.Open(s.usersFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var users []*internal.User
	if err := json.NewDecoder(file).Decode(&users); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		u.Preferences.ApplyDefaults()
		s.users[u.ID] = u
	}
	return nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStorage) saveLogs() error {
	s.mu.RLock()
	logs := make([]*internal.LogEntry, 0, len(s.logs))
	for _, l := range s.logs {
		logs = append(logs, l)
	}
	s.mu.RUnlock()

	return atomicWriteFileJSON(s.logsFile, logs)
}

func (s *FileStorage) saveUsers() error {
	s.mu.RLock()
	users := make([]*internal.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	s.mu.RUnlock()

	return atomicWriteFileJSON(s.usersFile, users)
}

func (s *FileStorage) saveWorker(trigger chan struct{}, save func() error, what string) {
	timer := time.NewTimer(s.saveDelay)
	defer timer.Stop()

	for {
		select {
		case <-trigger:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := save(); err != nil {
				s.logger.Errorf("storage: error saving %s: %v", what, err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

func (s *FileStorage) Close() error {
	close(s.shutdownChan)

	// Flush pending data synchronously on shutdown
	if err := s.saveLogs(); err != nil {
		return err
	}
	return s.saveUsers()
}

func (s *FileStorage) scheduleSave(trigger chan struct{}) {
	select {
	case trigger <- struct{}{}:
	default:
	}
}

// --- LogRepository ---

func (s *FileStorage) SaveLog(ctx context.Context, log *internal.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs[log.ID] = log
	logs := s.userLogIndex[log.UserID]
	inserted := false
	for i, existing := range logs {
		if existing.CreatedAt.Before(log.CreatedAt) {
			logs = append(logs[:i], append([]*internal.LogEntry{log}, logs[i:]...)...)
			inserted = true
			break
		}
	}
	if !inserted {
		logs = append(logs, log)
	}
	s.userLogIndex[log.UserID] = logs
	s.scheduleSave(s.saveLogsChan)
	return nil
}

func (s *FileStorage) GetLog(ctx context.Context, id string) (*internal.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log, ok := s.logs[id]
	if !ok {
		return nil, internal.ErrNotFound
	}
	copied := *log
	return &copied, nil
}

func (s *FileStorage) UpdateLog(ctx context.Context, log *internal.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.logs[log.ID]
	if !ok {
		return internal.ErrNotFound
	}
	*existing = *log
	s.scheduleSave(s.saveLogsChan)
	return nil
}

func (s *FileStorage) DeleteLog(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log, ok := s.logs[id]
	if !ok {
		return internal.ErrNotFound
	}
	delete(s.logs, id)
	logs := s.userLogIndex[log.UserID]
	for i, l := range logs {
		if l.ID == id {
			s.userLogIndex[log.UserID] = append(logs[:i], logs[i+1:]...)
			break
		}
	}
	s.scheduleSave(s.saveLogsChan)
	return nil
}

func (s *FileStorage) ListLogs(ctx context.Context, userID string) ([]internal.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	logsPtr, ok := s.userLogIndex[userID]
	if !ok {
		return []internal.LogEntry{}, nil
	}
	logs := make([]internal.LogEntry, len(logsPtr))
	for i, l := range logsPtr {
		logs[i] = *l
	}
	return logs, nil
}

func (s *FileStorage) HasLogOnDay(ctx context.Context, userID, dayKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.userLogIndex[userID] {
		if l.Date.DayKey() == dayKey {
			return true, nil
		}
	}
	return false, nil
}

// --- UserRepository ---

func (s *FileStorage) GetUser(ctx context.Context, id string) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, internal.ErrNotFound
	}
	copied := *u
	copied.Preferences.ApplyDefaults()
	return &copied, nil
}

func (s *FileStorage) MergeUser(ctx context.Context, id string, patch internal.UserPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		u = &internal.User{ID: id}
		u.Preferences.ApplyDefaults()
		s.users[id] = u
	}

	if patch.LastStartTime != nil {
		u.LastStartTime = *patch.LastStartTime
	}
	if patch.LastEndTime != nil {
		u.LastEndTime = *patch.LastEndTime
	}
	if patch.PushToken != nil {
		u.PushToken = *patch.PushToken
	}
	if patch.PushTokenUpdatedAt != nil {
		u.PushTokenUpdatedAt = *patch.PushTokenUpdatedAt
	}
	if patch.Preferences != nil {
		prefs := *patch.Preferences
		prefs.ApplyDefaults()
		u.Preferences = prefs
	}
	if patch.UpdatedAt != nil {
		u.UpdatedAt = *patch.UpdatedAt
	} else {
		u.UpdatedAt = time.Now()
	}

	s.scheduleSave(s.saveUsersChan)
	return nil
}

func (s *FileStorage) ListNotifiable(ctx context.Context) ([]internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var users []internal.User
	for _, u := range s.users {
		if u.PushToken == "" {
			continue
		}
		copied := *u
		copied.Preferences.ApplyDefaults()
		users = append(users, copied)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// --- Compile-time assertions ---
var _ LogRepository = (*FileStorage)(nil)
var _ UserRepository = (*FileStorage)(nil)
