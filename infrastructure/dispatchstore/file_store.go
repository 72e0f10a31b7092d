// Package dispatchstore persists the dispatch file.
package dispatchstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/reglet-dev/sensecore/domain/entities"
	"github.com/reglet-dev/sensecore/domain/ports"
	"github.com/reglet-dev/sensecore/infrastructure/parser"
)

// DefaultPath is the system dispatch file.
const DefaultPath = "/etc/sensecore/dispatch.yaml"

// fileStoreConfig holds configuration for the FileStore.
type fileStoreConfig struct {
	path     string
	parser   ports.DispatchParser
	dirPerm  os.FileMode
	filePerm os.FileMode
}

func defaultFileStoreConfig() fileStoreConfig {
	return fileStoreConfig{
		path:     DefaultPath,
		parser:   parser.NewYamlDispatchParser(),
		dirPerm:  0o755,
		filePerm: 0o644,
	}
}

// FileStoreOption configures a FileStore instance.
type FileStoreOption func(*fileStoreConfig)

// WithPath sets the path to the dispatch file.
func WithPath(path string) FileStoreOption {
	return func(c *fileStoreConfig) {
		if path != "" {
			c.path = path
		}
	}
}

// WithParser replaces the YAML parser.
func WithParser(p ports.DispatchParser) FileStoreOption {
	return func(c *fileStoreConfig) {
		if p != nil {
			c.parser = p
		}
	}
}

// WithFilePermissions sets the permissions of a newly written file.
// Default is 0o644: the file is world readable so every user can load the
// system core.
func WithFilePermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.filePerm = perm
	}
}

// WithDirPermissions sets the permissions of created directories.
func WithDirPermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.dirPerm = perm
	}
}

// FileStore implements ports.DispatchStore on a YAML file.
type FileStore struct {
	config fileStoreConfig
}

var _ ports.DispatchStore = (*FileStore)(nil)

// NewFileStore creates a new FileStore with the given options.
func NewFileStore(opts ...FileStoreOption) *FileStore {
	cfg := defaultFileStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &FileStore{config: cfg}
}

// Load reads the dispatch file. A missing file yields an empty registry.
func (s *FileStore) Load() (*entities.DispatchRegistry, error) {
	data, err := os.ReadFile(s.config.path)
	if errors.Is(err, os.ErrNotExist) {
		return &entities.DispatchRegistry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dispatch file: %w", err)
	}
	reg, err := s.config.parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.config.path, err)
	}
	return reg, nil
}

// Save writes reg atomically through a temporary file in the same directory.
func (s *FileStore) Save(reg *entities.DispatchRegistry) error {
	data, err := s.config.parser.Marshal(reg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.config.path)
	if err := os.MkdirAll(dir, s.config.dirPerm); err != nil {
		return fmt.Errorf("failed to create dispatch directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".dispatch-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to write dispatch file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write dispatch file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write dispatch file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), s.config.filePerm); err != nil {
		return fmt.Errorf("failed to write dispatch file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.config.path); err != nil {
		return fmt.Errorf("failed to write dispatch file: %w", err)
	}
	return nil
}

// ConfigPath returns the path to the dispatch file.
func (s *FileStore) ConfigPath() string {
	return s.config.path
}
