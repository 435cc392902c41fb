package engineconfig

import (
	"testing"

	"github.com/laut-go/diachron/pkg/feature"
	"github.com/laut-go/diachron/pkg/soundlaw"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.IgnoreDistance != feature.IgnoreDistance {
		t.Errorf("IgnoreDistance = %d, want %d", cfg.IgnoreDistance, feature.IgnoreDistance)
	}
}

func TestLoadBlob(t *testing.T) {
	cfg, err := LoadBlob([]byte(`
ignore_distance = 3
feature_model = "features.txt"
library_name = "core"
library_version = "1.0"
`))
	if err != nil {
		t.Fatalf("LoadBlob: %v", err)
	}
	if cfg.IgnoreDistance != 3 || cfg.FeatureModel != "features.txt" || cfg.LibraryName != "core" || cfg.LibraryVersion != "1.0" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadBlobPartialKeepsDefaults(t *testing.T) {
	cfg, err := LoadBlob([]byte(`library_name = "core"`))
	if err != nil {
		t.Fatalf("LoadBlob: %v", err)
	}
	if cfg.IgnoreDistance != feature.IgnoreDistance {
		t.Errorf("IgnoreDistance = %d, want the default %d", cfg.IgnoreDistance, feature.IgnoreDistance)
	}
}

func TestApplyTo(t *testing.T) {
	m := &feature.Model{IgnoreDistance: feature.IgnoreDistance}
	cfg := Config{IgnoreDistance: 2}
	cfg.ApplyTo(m)
	if m.IgnoreDistance != 2 {
		t.Errorf("IgnoreDistance = %d, want 2", m.IgnoreDistance)
	}
}

func TestApplyToZeroLeavesDefault(t *testing.T) {
	m := &feature.Model{IgnoreDistance: feature.IgnoreDistance}
	Config{}.ApplyTo(m)
	if m.IgnoreDistance != feature.IgnoreDistance {
		t.Errorf("IgnoreDistance = %d, want unchanged default %d", m.IgnoreDistance, feature.IgnoreDistance)
	}
}

func TestCheckProgramMismatch(t *testing.T) {
	cfg := Config{LibraryName: "core", LibraryVersion: "2.0"}
	prog := &soundlaw.Program{LibraryName: "core", LibraryVersion: "1.0"}
	err := cfg.CheckProgram(prog)
	if _, ok := err.(*LibraryMismatchError); !ok {
		t.Fatalf("err = %v, want *LibraryMismatchError", err)
	}
}

func TestCheckProgramNoDeclarationPasses(t *testing.T) {
	cfg := Config{LibraryName: "core", LibraryVersion: "2.0"}
	prog := &soundlaw.Program{}
	if err := cfg.CheckProgram(prog); err != nil {
		t.Errorf("CheckProgram: %v, want nil for an undeclared program", err)
	}
}
