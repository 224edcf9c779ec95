package storage

import (
	"context"
	"os"
	"path/filepath"

	api "github.com/weak-head/bin2hex64/api/v1"
	"github.com/weak-head/bin2hex64/internal/logger"
)

const (
	// fileMode is the permission of newly created files.
	fileMode = 0644
)

// localStorage keeps objects on the local filesystem.
// The location bucket, if any, is the directory of the object.
type localStorage struct {
	log logger.Log
}

// NewLocalStorage creates a filesystem backed storage.
func NewLocalStorage(log logger.Log) (*localStorage, error) {
	return &localStorage{
		log: log.WithField(logger.FieldPackage, "storage"),
	}, nil
}

// Store creates or truncates the file. Missing parent
// directories are not created.
func (l *localStorage) Store(
	ctx context.Context,
	loc *api.Location,
	objectBytes []byte,
	contentType string,
) error {
	path := localPath(loc)
	log := l.log.WithFields(logger.Fields{
		logger.FieldFunction: "localStorage.Store",
		"path":               path,
	})

	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fileMode)
	if err != nil {
		log.Error(err, "Failed to create the file.")
		return err
	}

	if _, err := f.Write(objectBytes); err != nil {
		f.Close()
		log.Error(err, "Failed to write the file.")
		return err
	}

	if err := f.Close(); err != nil {
		log.Error(err, "Failed to close the file.")
		return err
	}

	log.Debug("Stored the file.")
	return nil
}

// Retrieve reads the whole file.
func (l *localStorage) Retrieve(
	ctx context.Context,
	loc *api.Location,
) ([]byte, error) {
	path := localPath(loc)
	log := l.log.WithFields(logger.Fields{
		logger.FieldFunction: "localStorage.Retrieve",
		"path":               path,
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error(err, "Failed to read the file.")
		return nil, err
	}

	log.Debug("Retrieved the file.")
	return data, nil
}

func localPath(loc *api.Location) string {
	if loc.Bucket == "" {
		return loc.ObjectName
	}
	return filepath.Join(loc.Bucket, loc.ObjectName)
}
