// Package configsvc watches configuration files and notifies clients of changes.
package configsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ghodss/yaml"
	"go.uber.org/zap"
)

const defaultDebounce = 50 * time.Millisecond

type subscriber func(event fsnotify.Event)

type Service struct {
	log      *zap.Logger
	debounce time.Duration

	watcher     *fsnotify.Watcher
	mu          sync.Mutex
	subscribers []subscriber
	ready       chan struct{}
}

func New(log *zap.Logger) *Service {
	return &Service{
		log:      log,
		debounce: defaultDebounce,
		ready:    make(chan struct{}),
	}
}

// SetDebounce sets how long a file must stay quiet before it is reloaded.
func (s *Service) SetDebounce(d time.Duration) {
	s.debounce = d
}

func (s *Service) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	s.watcher = watcher
	defer s.watcher.Close()
	close(s.ready)
	s.log.Info("Config service started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-s.watcher.Events:
			if !ok {
				return nil
			}
			s.mu.Lock()
			subs := s.subscribers
			s.mu.Unlock()
			for _, sub := range subs {
				sub(event)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Error("Watcher error", zap.Error(err))
		}
	}
}

func (s *Service) Ready() <-chan struct{} {
	return s.ready
}

// Watch reads the file at path and calls fn with its contents every time it
// is written. Bursts of writes are collapsed into one call. It returns the
// initial contents.
func (s *Service) Watch(path string, fn func(data []byte, err error)) ([]byte, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for %s: %w", path, err)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := s.watch(absPath, func() {
		fn(os.ReadFile(absPath))
	}); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Service) watch(absPath string, reload func()) error {
	<-s.ready
	if err := s.watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to add path to watcher %s: %w", absPath, err)
	}

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	s.mu.Lock()
	s.subscribers = append(s.subscribers, func(event fsnotify.Event) {
		if event.Name != absPath || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
			return
		}
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(s.debounce, reload)
	})
	s.mu.Unlock()
	return nil
}

type validator interface {
	Validate() error
}

// Register registers a configuration file to watch for changes and calls fn with the new configuration.
// It returns the initial configuration and an error if the file cannot be read.
// Configurations implementing Validate() error are validated on every load.
// Service instance is used as a parameter instead of the method receiver to enable generic types.
func Register[T any](s *Service, path string, def T, fn func(config T, err error)) (T, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return def, fmt.Errorf("failed to get absolute path for %s: %w", path, err)
	}
	config, err := readConfig(absPath, def)
	if err != nil {
		return def, fmt.Errorf("failed to read config: %w", err)
	}
	err = s.watch(absPath, func() {
		fn(readConfig(absPath, def))
	})
	if err != nil {
		return def, err
	}
	return config, nil
}

// RegisterWriteable is Register for files the agent owns: a missing file is
// created from def.
func RegisterWriteable[T any](s *Service, path string, def T, fn func(config T, err error)) (T, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return def, fmt.Errorf("failed to get absolute path for %s: %w", path, err)
	}
	_, err = os.Stat(absPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return def, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := WriteConfig(absPath, def); err != nil {
			return def, fmt.Errorf("failed to initialize config: %w", err)
		}
	case err != nil:
		return def, fmt.Errorf("failed to stat config: %w", err)
	}
	return Register(s, absPath, def, fn)
}

// WriteConfig stores config as YAML.
func WriteConfig[T any](path string, config T) error {
	jsonB, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	yamlB, err := yaml.JSONToYAML(jsonB)
	if err != nil {
		return fmt.Errorf("failed to convert json to yaml: %w", err)
	}

	err = os.WriteFile(path, yamlB, 0644)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func readConfig[T any](path string, def T) (T, error) {
	yamlB, err := os.ReadFile(path)
	if err != nil {
		return def, fmt.Errorf("failed to read config file: %w", err)
	}

	jsonB, err := yaml.YAMLToJSON(yamlB)
	if err != nil {
		return def, fmt.Errorf("failed to convert yaml to json: %w", err)
	}
	config := def
	err = json.Unmarshal(jsonB, &config)
	if err != nil {
		return def, fmt.Errorf("failed to unmarshal json: %w", err)
	}
	if v, ok := any(config).(validator); ok {
		if err := v.Validate(); err != nil {
			return def, fmt.Errorf("invalid config: %w", err)
		}
	}
	return config, nil
}
