package driver

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"fortio.org/safecast"
	"github.com/go-sourcemap/sourcemap"

	"escheck/internal/diag"
	"escheck/internal/source"
)

const dataURLPrefix = "data:application/json"

// SourceMaps resolves generated positions back to original sources. Maps
// are parsed once per file and run; a file without a map is remembered too.
type SourceMaps struct {
	mu   sync.Mutex
	maps map[source.FileID]*sourcemap.Consumer
}

// NewSourceMaps creates an empty resolver.
func NewSourceMaps() *SourceMaps {
	return &SourceMaps{maps: make(map[source.FileID]*sourcemap.Consumer)}
}

// Load parses the map referenced by file. It returns a nil error when the
// file references no map; a referenced map that cannot be read or parsed is
// an error, and the file is treated as unmapped afterwards.
func (s *SourceMaps) Load(file *source.File) error {
	if s == nil || file == nil {
		return nil
	}
	s.mu.Lock()
	_, seen := s.maps[file.ID]
	s.mu.Unlock()
	if seen {
		return nil
	}
	consumer, err := loadSourceMap(file)
	s.mu.Lock()
	s.maps[file.ID] = consumer
	s.mu.Unlock()
	return err
}

// Origin returns the original position for a 1-based generated position in
// file, or nil when the file has no map or the position is unmapped.
func (s *SourceMaps) Origin(file *source.File, pos source.LineCol) *diag.Origin {
	if s == nil || file == nil || pos.Line == 0 {
		return nil
	}
	s.mu.Lock()
	consumer := s.maps[file.ID]
	s.mu.Unlock()
	if consumer == nil {
		return nil
	}
	col := pos.Col
	if col > 0 {
		col--
	}
	src, _, line, column, ok := consumer.Source(int(pos.Line), int(col))
	if !ok || src == "" {
		return nil
	}
	l, lerr := safecast.Conv[uint32](line)
	c, cerr := safecast.Conv[uint32](column + 1)
	if lerr != nil || cerr != nil {
		return nil
	}
	return &diag.Origin{Path: src, Line: l, Column: c}
}

func loadSourceMap(file *source.File) (*sourcemap.Consumer, error) {
	url := sourceMappingURL(file.Content)
	var (
		mapPath string
		data    []byte
		err     error
	)
	switch {
	case strings.HasPrefix(url, dataURLPrefix):
		mapPath = file.Path + ".map"
		data, err = decodeDataURL(url)
	case url != "":
		mapPath = url
		if !filepath.IsAbs(mapPath) {
			mapPath = filepath.Join(filepath.Dir(filepath.FromSlash(file.Path)), filepath.FromSlash(url))
		}
		// #nosec G304 -- the map is referenced by an emitted asset
		data, err = os.ReadFile(mapPath)
	default:
		mapPath = filepath.FromSlash(file.Path) + ".map"
		data, err = os.ReadFile(mapPath)
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("source map %s: %w", mapPath, err)
	}
	consumer, err := sourcemap.Parse(mapPath, data)
	if err != nil {
		return nil, fmt.Errorf("source map %s: %w", mapPath, err)
	}
	return consumer, nil
}

// sourceMappingURL returns the URL of the last "//# sourceMappingURL="
// comment in content. The legacy "//@" form is accepted.
func sourceMappingURL(content []byte) string {
	for _, marker := range [][]byte{[]byte("//# sourceMappingURL="), []byte("//@ sourceMappingURL=")} {
		i := bytes.LastIndex(content, marker)
		if i < 0 {
			continue
		}
		rest := content[i+len(marker):]
		if nl := bytes.IndexAny(rest, "\r\n"); nl >= 0 {
			rest = rest[:nl]
		}
		return strings.TrimSpace(string(rest))
	}
	return ""
}

func decodeDataURL(url string) ([]byte, error) {
	meta, payload, ok := strings.Cut(url, ",")
	if !ok {
		return nil, errors.New("malformed data URL")
	}
	if strings.HasSuffix(meta, ";base64") {
		return base64.StdEncoding.DecodeString(payload)
	}
	return []byte(payload), nil
}
