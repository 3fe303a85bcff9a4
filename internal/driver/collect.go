package driver

import (
	"context"

	"escheck/internal/exclude"
	"escheck/internal/source"
	"escheck/internal/trace"
)

type candidate struct {
	path     string
	kind     AssetKind
	contents []byte
}

// collect normalises emitted assets and drops duplicates, files that are not
// HTML or JavaScript, and files matched by output exclusion.
func (r *Runner) collect(ctx context.Context, emit Emit, state *RunState) []candidate {
	seen := make(map[string]struct{}, len(emit.Assets))
	out := make([]candidate, 0, len(emit.Assets))
	for _, asset := range emit.Assets {
		if asset.Name == "" {
			continue
		}
		path := source.ResolveAsset(state.OutputRoot, asset.Name)
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}

		kind := Classify(path)
		if kind == AssetOther {
			state.Ignored++
			continue
		}
		if exclude.IsExcluded(exclude.Subject{Path: path}, r.opts.ExcludeOutput) {
			state.Skipped = append(state.Skipped, path)
			trace.Point(ctx, trace.ScopeFile, "skip", path)
			continue
		}
		out = append(out, candidate{path: path, kind: kind, contents: asset.Contents})
		state.Checked = append(state.Checked, path)
	}
	return out
}

func resolveRoot(root string) string {
	abs, err := source.AbsolutePath(root)
	if err != nil {
		return root
	}
	return abs
}
