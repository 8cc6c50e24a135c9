package services

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultSetAliases(t *testing.T) {
	aliases := DefaultSetAliases()

	tests := []struct {
		code string
		want []string
	}{
		{"HOP", []string{"phop"}},
		{"NMS", []string{"nem"}},
		{"pMBR", []string{"pmbs"}},
		// Lookups are case-sensitive
		{"hop", nil},
		{"LEA", nil},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := aliases.Targets(tt.code); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Targets(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}

	if got := aliases.Targets("pMEI"); len(got) < 2 || got[0] != "pdrc" {
		t.Errorf("expected pMEI to keep its order, got %v", got)
	}
}

func TestParseSetAliases(t *testing.T) {
	aliases, err := ParseSetAliases([]byte(`
[aliases]
OLD = ["new1", "new2"]
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := aliases.Targets("OLD"); !reflect.DeepEqual(got, []string{"new1", "new2"}) {
		t.Errorf("unexpected targets %v", got)
	}

	if _, err := ParseSetAliases([]byte("[aliases\nOLD = ")); err == nil {
		t.Error("expected an error for malformed TOML")
	}
}

func TestLoadSetAliases(t *testing.T) {
	t.Run("empty path uses built-in table", func(t *testing.T) {
		aliases, err := LoadSetAliases("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(aliases.Targets("HOP")) == 0 {
			t.Error("expected built-in HOP alias")
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "aliases.toml")
		if err := os.WriteFile(path, []byte("[aliases]\nXYZ = [\"abc\"]\n"), 0644); err != nil {
			t.Fatal(err)
		}
		aliases, err := LoadSetAliases(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := aliases.Targets("XYZ"); !reflect.DeepEqual(got, []string{"abc"}) {
			t.Errorf("unexpected targets %v", got)
		}
		if aliases.Targets("HOP") != nil {
			t.Error("expected a custom table to replace the built-in one")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadSetAliases(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
			t.Error("expected an error")
		}
	})
}
