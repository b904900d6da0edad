package layer

import (
	"log"
	"path/filepath"
	"sort"
	"strings"
)

// Discover finds and loads every coverage layer in dir. A layer is any
// *.kml descriptor except those whose base name contains exclude (used to
// skip descriptors generated by earlier composite runs). Descriptors are
// processed in lexicographic order so that tie-breaking during the merge is
// deterministic. A descriptor that fails to load is logged and skipped.
func Discover(dir, exclude string, logger *log.Logger) ([]*Layer, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.kml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	var layers []*Layer
	for _, kml := range matches {
		if exclude != "" && strings.Contains(filepath.Base(kml), exclude) {
			continue
		}
		l, err := Load(kml)
		if err != nil {
			if logger != nil {
				logger.Printf("skipping %s: %v", kml, err)
			}
			continue
		}
		l.Index = len(layers)
		layers = append(layers, l)
		if logger != nil {
			logger.Printf("found layer %s", l)
		}
	}
	return layers, nil
}
