package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/enrich-cli/internal/utils"
)

const (
	studyFileName = "study.json"
)

// Study represents an enrichment study persisted on disk: the reference
// inputs it is pinned to and the history of batch runs against them.
type Study struct {
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	ReferenceFile string       `json:"reference_file,omitempty"`
	UniverseFile  string       `json:"universe_file,omitempty"`
	DataRoot      string       `json:"data_root,omitempty"`
	Runs          []*RunRecord `json:"runs"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`

	// Not serialized: on-disk location of the study.json
	rootDir string `json:"-"`
}

// NewStudy constructs an in-memory study. Call Save() to persist.
func NewStudy(name, description, rootDir string) *Study {
	return &Study{
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		rootDir:     rootDir,
	}
}

// LoadStudy loads a study.json from the provided directory.
func LoadStudy(dir string) (*Study, error) {
	path := filepath.Join(dir, studyFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("study not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read study: %w", err)
	}
	var s Study
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse study: %w", err)
	}
	s.rootDir = dir
	return &s, nil
}

// RootDir returns the on-disk study directory path.
func (s *Study) RootDir() string { return s.rootDir }

// Save writes study.json using atomic write.
func (s *Study) Save() error {
	if s.rootDir == "" {
		return errors.New("study root directory not set")
	}
	if err := utils.EnsureDir(s.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	s.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(s)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(s.rootDir, studyFileName), data)
}

// Resolve returns path unchanged when absolute or empty, otherwise joined
// onto the study directory.
func (s *Study) Resolve(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || filepath.IsAbs(path) || s.rootDir == "" {
		return path
	}
	return filepath.Join(s.rootDir, path)
}

// Pin records the reference inputs for later runs. Empty values leave the
// existing setting untouched.
func (s *Study) Pin(reference, universe, dataRoot string) {
	if v := strings.TrimSpace(reference); v != "" {
		s.ReferenceFile = v
	}
	if v := strings.TrimSpace(universe); v != "" {
		s.UniverseFile = v
	}
	if v := strings.TrimSpace(dataRoot); v != "" {
		s.DataRoot = v
	}
	s.UpdatedAt = time.Now()
}
