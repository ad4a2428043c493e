package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Document is the JSON file written for a run: every mesh and point
// cloud it produced.
type Document struct {
	Meshes []*MeshData  `json:"meshes"`
	Points []*PointData `json:"points"`
}

// WriteJSON encodes doc to w, indented.
func WriteJSON(w io.Writer, doc *Document) error {
	if doc.Meshes == nil {
		doc.Meshes = []*MeshData{}
	}
	if doc.Points == nil {
		doc.Points = []*PointData{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("export: encode json: %w", err)
	}
	return nil
}

// SaveJSON writes doc to path.
func SaveJSON(path string, doc *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := WriteJSON(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
