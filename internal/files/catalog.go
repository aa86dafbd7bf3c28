package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	apperrors "estadistica/internal/errors"
	"estadistica/pkg/contracts/domain"
)

// ReportFile describes one generated report.
type ReportFile struct {
	Name    string              `json:"name"`
	Path    string              `json:"-"`
	Mode    string              `json:"mode"`
	Format  domain.ReportFormat `json:"format"`
	Size    int64               `json:"size"`
	ModTime time.Time           `json:"modified"`
}

type artifactKind struct {
	mode   domain.ReportMode
	format domain.ReportFormat
}

var artifacts = func() map[string]artifactKind {
	out := make(map[string]artifactKind)
	for _, m := range []domain.ReportMode{domain.ModePlain, domain.ModeSubtotal, domain.ModeExtra, domain.ModeCombined} {
		for _, f := range []domain.ReportFormat{domain.ReportFormatExcel, domain.ReportFormatCSV} {
			out[m.FileName(f)] = artifactKind{mode: m, format: f}
		}
	}
	return out
}()

// IsArtifactName reports whether name is the file name of some mode and
// format.
func IsArtifactName(name string) bool {
	_, ok := artifacts[name]
	return ok
}

// Catalog lists the reports present in one directory.
type Catalog struct {
	dir string
}

// NewCatalog creates a catalog of dir.
func NewCatalog(dir string) *Catalog {
	return &Catalog{dir: dir}
}

// Dir returns the cataloged directory.
func (c *Catalog) Dir() string {
	return c.dir
}

// List returns the generated reports, newest first. A missing directory
// lists nothing.
func (c *Catalog) List() ([]ReportFile, error) {
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read reports directory", err).WithContext("path", c.dir)
	}

	var out []ReportFile
	for _, e := range entries {
		if e.IsDir() || !IsArtifactName(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, c.describe(e.Name(), info))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ModTime.Equal(out[j].ModTime) {
			return out[i].ModTime.After(out[j].ModTime)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Lookup returns the report called name. Unknown names and reports not
// generated yet are NOT_FOUND errors.
func (c *Catalog) Lookup(name string) (ReportFile, error) {
	if !IsArtifactName(name) {
		return ReportFile{}, apperrors.NewNotFoundError(fmt.Sprintf("report %q", name))
	}
	info, err := os.Stat(filepath.Join(c.dir, name))
	if err != nil || info.IsDir() {
		return ReportFile{}, apperrors.NewNotFoundError(fmt.Sprintf("report %q", name))
	}
	return c.describe(name, info), nil
}

func (c *Catalog) describe(name string, info fs.FileInfo) ReportFile {
	kind := artifacts[name]
	return ReportFile{
		Name:    name,
		Path:    filepath.Join(c.dir, name),
		Mode:    kind.mode.String(),
		Format:  kind.format,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}
