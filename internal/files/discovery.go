package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// workbookExtensions are the file types the parser can open
var workbookExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xls":  true,
}

// Workbook represents a report workbook found on disk
type Workbook struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery finds report workbooks under a base directory
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance; relative directories resolve against basePath
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindWorkbooks lists the workbooks directly inside dir, oldest first.
// Excel lock files (~$name.xlsx) and empty files are skipped.
func (d *Discovery) FindWorkbooks(dir string) ([]Workbook, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) && d.basePath != "" {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var found []Workbook
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasPrefix(name, "~$") || !workbookExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}

		info, err := entry.Info()
		if err != nil || info.Size() == 0 {
			continue
		}

		found = append(found, Workbook{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].ModTime.Equal(found[j].ModTime) {
			return found[i].Name < found[j].Name
		}
		return found[i].ModTime.Before(found[j].ModTime)
	})

	return found, nil
}

// Latest returns the most recently modified workbook
func Latest(found []Workbook) (Workbook, bool) {
	if len(found) == 0 {
		return Workbook{}, false
	}

	latest := found[0]
	for _, wb := range found[1:] {
		if wb.ModTime.After(latest.ModTime) {
			latest = wb
		}
	}
	return latest, true
}

// ModifiedSince keeps the workbooks modified at or after since
func ModifiedSince(found []Workbook, since time.Time) []Workbook {
	var filtered []Workbook
	for _, wb := range found {
		if !wb.ModTime.Before(since) {
			filtered = append(filtered, wb)
		}
	}
	return filtered
}
