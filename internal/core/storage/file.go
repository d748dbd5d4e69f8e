package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/downhill/internal/core/observability/log"
	"github.com/zeusync/downhill/internal/core/terrain"
)

var _ LevelStore = (*FileStore)(nil)

type levelFile struct {
	Levels []levelRecord `yaml:"levels"`
}

// levelRecord stores points as "x y z,x y z". RenderSpace marks point lists
// exported from a renderer, whose x axis is mirrored.
type levelRecord struct {
	Number      int    `yaml:"number"`
	Name        string `yaml:"name"`
	Points      string `yaml:"points"`
	RenderSpace bool   `yaml:"render_space,omitempty"`
}

// FileStore keeps levels in a single YAML file. The file is read on every
// call so edits show up without a restart.
type FileStore struct {
	path   string
	logger log.Log
	mu     sync.Mutex
}

func NewFileStore(path string, logger log.Log) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger.With(log.String("component", "level_store"), log.String("path", path)),
	}
}

func (s *FileStore) Load(ctx context.Context, number int) (Level, error) {
	levels, err := s.List(ctx)
	if err != nil {
		return Level{}, err
	}
	for _, l := range levels {
		if l.Number == number {
			return l, nil
		}
	}
	return Level{}, fmt.Errorf("%w: %d in %s", ErrLevelNotFound, number, s.path)
}

// List returns all levels ordered by number.
func (s *FileStore) List(ctx context.Context) ([]Level, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.read()
	if err != nil {
		return nil, err
	}

	levels := make([]Level, 0, len(file.Levels))
	for _, rec := range file.Levels {
		level, err := rec.decode()
		if err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	slices.SortFunc(levels, func(a, b Level) int { return a.Number - b.Number })
	return levels, nil
}

// Save adds or replaces the level with the same number.
func (s *FileStore) Save(ctx context.Context, level Level) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validate(level); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.read()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	rec := levelRecord{Number: level.Number, Name: level.Name, Points: terrain.FormatLevel(level.Points)}
	i := slices.IndexFunc(file.Levels, func(r levelRecord) bool { return r.Number == level.Number })
	if i >= 0 {
		file.Levels[i] = rec
	} else {
		file.Levels = append(file.Levels, rec)
	}

	if err = s.write(file); err != nil {
		return err
	}
	s.logger.Info("level saved", log.Int("number", level.Number), log.Int("points", len(level.Points)))
	return nil
}

func (s *FileStore) read() (levelFile, error) {
	var file levelFile
	data, err := os.ReadFile(s.path)
	if err != nil {
		return file, fmt.Errorf("read levels: %w", err)
	}
	if err = yaml.NewDecoder(bytes.NewReader(data)).Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return file, fmt.Errorf("%w: decode %s: %v", ErrInvalidLevel, s.path, err)
	}
	return file, nil
}

func (s *FileStore) write(file levelFile) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("encode levels: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode levels: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".levels-*.yaml")
	if err != nil {
		return fmt.Errorf("write levels: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write levels: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("write levels: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write levels: %w", err)
	}
	return nil
}

func (r levelRecord) decode() (Level, error) {
	points, err := terrain.ParseLevel(r.Points)
	if err != nil {
		return Level{}, fmt.Errorf("%w: level %d: %w", ErrInvalidLevel, r.Number, err)
	}
	if r.RenderSpace {
		points = terrain.FromRenderSpace(points)
	}
	level := Level{Number: r.Number, Name: r.Name, Points: points}
	if err = validate(level); err != nil {
		return Level{}, err
	}
	return level, nil
}

func validate(level Level) error {
	if len(level.Points) < 2 {
		return fmt.Errorf("%w: level %d has %d points", ErrInvalidLevel, level.Number, len(level.Points))
	}
	for i := 1; i < len(level.Points); i++ {
		if level.Points[i].X() < level.Points[i-1].X() {
			return fmt.Errorf("%w: level %d: x decreases at point %d", ErrInvalidLevel, level.Number, i)
		}
	}
	return nil
}
