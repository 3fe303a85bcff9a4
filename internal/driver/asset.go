package driver

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
)

// AssetKind tells the runner how an emitted file is checked.
type AssetKind uint8

const (
	AssetOther AssetKind = iota
	// AssetScript is parsed as a whole.
	AssetScript
	// AssetHTML has its inline scripts extracted and parsed one by one.
	AssetHTML
)

func (k AssetKind) String() string {
	switch k {
	case AssetScript:
		return "script"
	case AssetHTML:
		return "html"
	default:
		return "other"
	}
}

// Asset is one file written by the bundler. Contents may be nil, in which
// case the file is read from disk during checking.
type Asset struct {
	Name     string
	Contents []byte
}

// Emit is what the host hands over once it has written its output.
type Emit struct {
	// OutputRoot anchors relative asset names.
	OutputRoot string
	Assets     []Asset
}

var scriptExts = map[string]AssetKind{
	".js":   AssetScript,
	".mjs":  AssetScript,
	".cjs":  AssetScript,
	".jsx":  AssetScript,
	".html": AssetHTML,
	".htm":  AssetHTML,
}

// Classify returns the kind of an emitted file from its extension. A query
// or hash suffix must already be stripped.
func Classify(path string) AssetKind {
	return scriptExts[strings.ToLower(filepath.Ext(path))]
}

// EmitFromDir lists every regular file under dir as an asset with a name
// relative to dir. Hidden directories and node_modules are not descended.
func EmitFromDir(dir string) (Emit, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return Emit{}, err
	}
	emit := Emit{OutputRoot: root}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			if errors.Is(walkErr, fs.ErrPermission) {
				return nil
			}
			return walkErr
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		emit.Assets = append(emit.Assets, Asset{Name: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return Emit{}, err
	}
	return emit, nil
}
