package version

import "testing"

func TestCurrentTrimsAndDefaults(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate }()

	Version = "  "
	GitCommit = " abc123 "
	BuildDate = "2024-01-15T10:30:00Z"

	info := Current()
	if info.Version != "dev" {
		t.Errorf("Version = %q, want dev", info.Version)
	}
	if info.GitCommit != "abc123" {
		t.Errorf("GitCommit = %q, want abc123", info.GitCommit)
	}
	if info.BuildDate != "2024-01-15T10:30:00Z" {
		t.Errorf("BuildDate = %q", info.BuildDate)
	}
	if info.GitMessage != "" {
		t.Errorf("GitMessage = %q, want empty", info.GitMessage)
	}
}

func TestColored(t *testing.T) {
	versionMajorColor.DisableColor()
	versionMinorColor.DisableColor()
	versionPatchColor.DisableColor()
	defer func() {
		versionMajorColor.EnableColor()
		versionMinorColor.EnableColor()
		versionPatchColor.EnableColor()
	}()

	tests := []struct{ in, want string }{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3", "1.2.3"},
		{"nightly", "nightly"},
		{"1.2", "1.2"},
	}
	for _, tt := range tests {
		if got := Colored(tt.in); got != tt.want {
			t.Errorf("Colored(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
