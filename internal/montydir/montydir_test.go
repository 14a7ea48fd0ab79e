package montydir

import (
	"path/filepath"
	"testing"
)

func TestPaths(t *testing.T) {
	tests := []struct {
		name    string
		workDir string
		want    string
	}{
		{"empty", "", filepath.Join("data", "tasks.txt")},
		{"dot", ".", filepath.Join("data", "tasks.txt")},
		{"absolute", "/srv/app", filepath.Join("/srv/app", "data", "tasks.txt")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DataPath(tt.workDir); got != tt.want {
				t.Errorf("DataPath(%q) = %q, want %q", tt.workDir, got, tt.want)
			}
		})
	}

	if got := SQLitePath("/srv/app"); got != filepath.Join("/srv/app", "data", "tasks.db") {
		t.Errorf("SQLitePath = %q", got)
	}
}

func TestProjectConfigCandidates(t *testing.T) {
	got := ProjectConfigCandidates("")
	if len(got) != 2 || got[0] != "monty.toml" || got[1] != ".monty.toml" {
		t.Errorf("candidates = %v", got)
	}
	got = ProjectConfigCandidates("/p")
	if got[0] != filepath.Join("/p", "monty.toml") {
		t.Errorf("candidates = %v", got)
	}
}
