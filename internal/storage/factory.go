package storage

import "github.com/Alpha4Coders/DevTrack/internal"

func NewFileRepositories(logsFile, usersFile string, logger internal.Logger) (LogRepository, UserRepository, error) {
	storage, err := NewFileStorage(logsFile, usersFile, logger)
	if err != nil {
		return nil, nil, err
	}
	return storage, storage, nil
}

func NewPostgresRepositories(dsn string, logger internal.Logger) (LogRepository, UserRepository, error) {
	storage, err := NewPostgresStorage(dsn, logger)
	if err != nil {
		return nil, nil, err
	}
	return storage, storage, nil
}
