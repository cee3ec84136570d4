package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tirecarstore/internal/models"

	"gopkg.in/yaml.v2"
)

//go:embed bookings.json
var defaultBookings []byte

// Source yields the initial bookings used when nothing is persisted yet.
type Source interface {
	Bookings() ([]models.Booking, error)
}

// Embedded is the dataset shipped inside the binary.
type Embedded struct{}

func (Embedded) Bookings() ([]models.Booking, error) {
	return decodeJSON(defaultBookings)
}

// File reads a seed dataset from a .json or .yaml file.
type File struct {
	Path string
}

func (f File) Bookings() ([]models.Booking, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".yaml", ".yml":
		var seedFile struct {
			Bookings []models.Booking `yaml:"bookings"`
		}
		if err := yaml.Unmarshal(data, &seedFile); err != nil {
			return nil, fmt.Errorf("parse seed yaml: %w", err)
		}
		return seedFile.Bookings, nil
	case ".json":
		return decodeJSON(data)
	default:
		return nil, fmt.Errorf("unsupported seed file extension %q", filepath.Ext(f.Path))
	}
}

// New picks the file source when path is set and the embedded one otherwise.
func New(path string) Source {
	if strings.TrimSpace(path) == "" {
		return Embedded{}
	}
	return File{Path: path}
}

func decodeJSON(data []byte) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := json.Unmarshal(data, &bookings); err != nil {
		return nil, fmt.Errorf("parse seed json: %w", err)
	}
	return bookings, nil
}
