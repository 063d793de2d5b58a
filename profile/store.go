package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// fileStoreConfig holds configuration for the FileStore.
type fileStoreConfig struct {
	path     string
	dirPerm  os.FileMode
	filePerm os.FileMode
}

func defaultFileStoreConfig() fileStoreConfig {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return fileStoreConfig{
		path:     filepath.Join(dir, "rvdispatch", "profiles.yaml"),
		dirPerm:  0o755,
		filePerm: 0o600,
	}
}

// FileStoreOption configures a FileStore instance.
type FileStoreOption func(*fileStoreConfig)

// WithPath sets the path to the profiles file.
func WithPath(path string) FileStoreOption {
	return func(c *fileStoreConfig) {
		if path != "" {
			c.path = path
		}
	}
}

// WithFilePermissions sets the file permissions for the profiles file.
func WithFilePermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.filePerm = perm
	}
}

// WithDirPermissions sets the permissions of the directory created for it.
func WithDirPermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.dirPerm = perm
	}
}

// storeFile is the on-disk layout.
type storeFile struct {
	Profiles map[string]Params `yaml:"profiles"`
}

// FileStore keeps named VM profiles in a YAML file.
type FileStore struct {
	config fileStoreConfig
	mu     sync.Mutex
}

// NewFileStore creates a new FileStore with the given options.
func NewFileStore(opts ...FileStoreOption) *FileStore {
	cfg := defaultFileStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &FileStore{config: cfg}
}

// Load returns every stored profile. A missing file is an empty store.
func (s *FileStore) Load() (map[string]Params, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) load() (map[string]Params, error) {
	data, err := os.ReadFile(s.config.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]Params{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile store: %w", err)
	}

	var f storeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse profile store: %w", err)
	}
	if f.Profiles == nil {
		f.Profiles = map[string]Params{}
	}
	return f.Profiles, nil
}

func (s *FileStore) save(profiles map[string]Params) error {
	data, err := yaml.Marshal(storeFile{Profiles: profiles})
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}

	dir := filepath.Dir(s.config.path)
	if err := os.MkdirAll(dir, s.config.dirPerm); err != nil {
		return fmt.Errorf("failed to create profile store directory: %w", err)
	}
	if err := os.WriteFile(s.config.path, data, s.config.filePerm); err != nil {
		return fmt.Errorf("failed to write profile store: %w", err)
	}
	return nil
}

// Get returns the named profile or ErrNotFound.
func (s *FileStore) Get(name string) (Params, error) {
	profiles, err := s.Load()
	if err != nil {
		return Params{}, err
	}
	p, ok := profiles[name]
	if !ok {
		return Params{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return p, nil
}

// Put stores p under name, replacing any previous profile of that name.
// The parameters are validated first.
func (s *FileStore) Put(name string, p Params) error {
	if name == "" {
		return errors.New("profile name must not be empty")
	}
	if err := Validate(p.Map()); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	profiles, err := s.load()
	if err != nil {
		return err
	}
	profiles[name] = p
	return s.save(profiles)
}

// Delete removes the named profile. Deleting an absent profile returns ErrNotFound.
func (s *FileStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profiles, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := profiles[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	delete(profiles, name)
	return s.save(profiles)
}

// Names returns the stored profile names in sorted order.
func (s *FileStore) Names() ([]string, error) {
	profiles, err := s.Load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ConfigPath returns the path to the backing store.
func (s *FileStore) ConfigPath() string {
	return s.config.path
}
