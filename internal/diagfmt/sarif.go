package diagfmt

import (
	"cmp"
	"encoding/json"
	"io"
	"slices"

	"fortio.org/safecast"

	"escheck/internal/diag"
	"escheck/internal/source"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
)

// SarifDocument is a SARIF 2.1.0 log with a single run.
type SarifDocument struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema,omitempty"`
	Runs    []SarifRun `json:"runs"`
}

type SarifRun struct {
	Tool        SarifTool         `json:"tool"`
	Invocations []SarifInvocation `json:"invocations,omitempty"`
	Results     []SarifResult     `json:"results"`
}

type SarifTool struct {
	Driver SarifDriver `json:"driver"`
}

type SarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []SarifRule `json:"rules,omitempty"`
}

type SarifRule struct {
	ID               string       `json:"id"`
	ShortDescription SarifMessage `json:"shortDescription"`
}

type SarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type SarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"` // "error", "warning", "note"
	Message   SarifMessage    `json:"message"`
	Locations []SarifLocation `json:"locations,omitempty"`
	// RelatedLocations carries the source-mapped original position.
	RelatedLocations []SarifLocation `json:"relatedLocations,omitempty"`
}

type SarifMessage struct {
	Text string `json:"text"`
}

type SarifLocation struct {
	PhysicalLocation SarifPhysicalLocation `json:"physicalLocation"`
	Message          *SarifMessage         `json:"message,omitempty"`
}

type SarifPhysicalLocation struct {
	ArtifactLocation SarifArtifactLocation `json:"artifactLocation"`
	Region           *SarifRegion          `json:"region,omitempty"`
}

type SarifArtifactLocation struct {
	URI string `json:"uri"`
}

type SarifRegion struct {
	StartLine   int           `json:"startLine,omitempty"`
	StartColumn int           `json:"startColumn,omitempty"`
	EndLine     int           `json:"endLine,omitempty"`
	EndColumn   int           `json:"endColumn,omitempty"`
	Snippet     *SarifMessage `json:"snippet,omitempty"`
}

func sarifLevel(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

func toInt(v uint32) int {
	n, err := safecast.Conv[int](v)
	if err != nil {
		return 0
	}
	return n
}

// BuildSarif converts bag into a SARIF document. Paths are relative to the
// FileSet base so the log stays portable between machines.
func BuildSarif(bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) SarifDocument {
	name := meta.ToolName
	if name == "" {
		name = "escheck"
	}
	run := SarifRun{
		Tool:    SarifTool{Driver: SarifDriver{Name: name, Version: meta.ToolVersion}},
		Results: make([]SarifResult, 0, bag.Len()),
	}
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []SarifInvocation{{Arguments: meta.InvocationArgs, ExecutionSuccessful: true}}
	}

	seenRules := make(map[diag.Code]bool)
	for _, d := range bag.Items() {
		if !seenRules[d.Code] {
			seenRules[d.Code] = true
			run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, SarifRule{
				ID:               d.Code.ID(),
				ShortDescription: SarifMessage{Text: d.Code.Title()},
			})
		}
		res := SarifResult{
			RuleID:  d.Code.ID(),
			Level:   sarifLevel(d.Severity),
			Message: SarifMessage{Text: d.Message},
		}
		if f := fs.Get(d.Primary.File); f != nil {
			loc := SarifLocation{PhysicalLocation: SarifPhysicalLocation{
				ArtifactLocation: SarifArtifactLocation{URI: f.FormatPath("relative", fs.BaseDir())},
			}}
			if len(f.Content) > 0 {
				start, end := fs.Resolve(d.Primary)
				loc.PhysicalLocation.Region = &SarifRegion{
					StartLine:   toInt(start.Line),
					StartColumn: toInt(start.Col),
					EndLine:     toInt(end.Line),
					EndColumn:   toInt(end.Col),
					Snippet:     &SarifMessage{Text: f.GetLine(start.Line)},
				}
			}
			res.Locations = []SarifLocation{loc}
		}
		if d.Origin != nil {
			res.RelatedLocations = []SarifLocation{{
				PhysicalLocation: SarifPhysicalLocation{
					ArtifactLocation: SarifArtifactLocation{URI: d.Origin.Path},
					Region:           &SarifRegion{StartLine: toInt(d.Origin.Line), StartColumn: toInt(d.Origin.Column)},
				},
				Message: &SarifMessage{Text: "original source"},
			}}
		}
		run.Results = append(run.Results, res)
	}
	slices.SortFunc(run.Tool.Driver.Rules, func(a, b SarifRule) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return SarifDocument{
		Version: sarifVersion,
		Schema:  sarifSchema,
		Runs:    []SarifRun{run},
	}
}

// Sarif writes bag as a SARIF 2.1.0 log.
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) error {
	data, err := json.MarshalIndent(BuildSarif(bag, fs, meta), "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
