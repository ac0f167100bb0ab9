package runs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileStorage keeps one JSON file per run id under a base directory.
type FileStorage struct {
	basePath string
}

// NewFileStorage creates the base directory if needed.
func NewFileStorage(basePath string) (*FileStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, err
	}
	return &FileStorage{basePath: basePath}, nil
}

// Save writes the record under its run id, replacing any previous version.
func (fs *FileStorage) Save(rec *Record) error {
	f, err := os.Create(filepath.Join(fs.basePath, rec.ID+".json"))
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rec)
}

// Load reads the record stored under the given run id.
func (fs *FileStorage) Load(id string) (*Record, error) {
	f, err := os.Open(filepath.Join(fs.basePath, id+".json"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rec Record
	if err := json.NewDecoder(f).Decode(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Exists reports whether a record is stored under the given run id.
func (fs *FileStorage) Exists(id string) bool {
	_, err := os.Stat(filepath.Join(fs.basePath, id+".json"))
	return err == nil
}

// RunInfo is the listing metadata for a stored run.
type RunInfo struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	FileSizeKB int64     `json:"fileSizeKB"`
}

// List returns metadata for every stored run.
func (fs *FileStorage) List() ([]RunInfo, error) {
	entries, err := os.ReadDir(fs.basePath)
	if err != nil {
		return nil, err
	}

	var infos []RunInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		infos = append(infos, RunInfo{
			ID:         strings.TrimSuffix(entry.Name(), ".json"),
			CreatedAt:  info.ModTime(),
			FileSizeKB: info.Size() / 1024,
		})
	}

	return infos, nil
}
