package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/scribelab/chronicler/internal/model"
)

func TestBuiltin_AllValid(t *testing.T) {
	builtins := Builtin()
	if len(builtins) == 0 {
		t.Fatal("expected builtin templates")
	}
	known := make(map[string]bool)
	for _, f := range model.OrderedFields() {
		known[f] = true
	}
	for _, tpl := range builtins {
		if tpl.ID == "" || tpl.Name == "" {
			t.Errorf("builtin template missing id or name: %+v", tpl)
		}
		for _, f := range tpl.Required {
			if !known[f] {
				t.Errorf("template %s requires unknown field %s", tpl.ID, f)
			}
		}
		for f := range tpl.Defaults {
			if !known[f] {
				t.Errorf("template %s defaults unknown field %s", tpl.ID, f)
			}
		}
	}
}

func TestLoad_BuiltinsAlwaysAvailable(t *testing.T) {
	store, warnings := Load("")
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if _, ok := store.Get("workshop"); !ok {
		t.Error("workshop builtin should be available")
	}
	if _, ok := store.Get("webinar"); !ok {
		t.Error("webinar builtin should be available")
	}
}

func TestLoad_MissingDirIsNotAnError(t *testing.T) {
	store, warnings := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	if len(warnings) != 0 {
		t.Errorf("missing dir should not warn: %v", warnings)
	}
	if len(store.All()) == 0 {
		t.Error("builtins should still load")
	}
}

func TestLoad_UserTemplateOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	yaml := `id: workshop
name: Custom Workshop
required:
  - event_title
`
	if err := os.WriteFile(filepath.Join(dir, "workshop.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	store, warnings := Load(dir)
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	tpl, ok := store.Get("workshop")
	if !ok {
		t.Fatal("workshop should exist")
	}
	if tpl.Name != "Custom Workshop" {
		t.Errorf("user template should override the builtin, got %q", tpl.Name)
	}
	if len(tpl.Required) != 1 {
		t.Errorf("unexpected required set: %v", tpl.Required)
	}
}

func TestLoad_CorruptFileIsSkippedWithWarning(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("{{{not yaml"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "noid.yaml"), []byte("name: No ID\n"), 0644); err != nil {
		t.Fatal(err)
	}

	store, warnings := Load(dir)
	if len(warnings) != 2 {
		t.Errorf("expected 2 warnings, got %v", warnings)
	}
	if _, ok := store.Get("workshop"); !ok {
		t.Error("builtins should survive corrupt user files")
	}
}

func TestLoad_IgnoresNonYAMLFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("not a template"), 0644); err != nil {
		t.Fatal(err)
	}
	_, warnings := Load(dir)
	if len(warnings) != 0 {
		t.Errorf("non-YAML files should be ignored silently: %v", warnings)
	}
}

func TestWriteFile_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	tpl := model.TemplateDefinition{
		ID:       "custom",
		Name:     "Custom Event",
		Required: []string{model.FieldEventTitle, model.FieldDate},
		Defaults: map[string]string{model.FieldMode: "Offline"},
	}

	path, err := WriteFile(dir, tpl)
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if filepath.Base(path) != "custom.yaml" {
		t.Errorf("unexpected file name: %s", path)
	}

	store, warnings := Load(dir)
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	back, ok := store.Get("custom")
	if !ok {
		t.Fatal("written template should load")
	}
	if back.Name != "Custom Event" || len(back.Required) != 2 {
		t.Errorf("template did not round-trip: %+v", back)
	}
	if v, _ := back.Default(model.FieldMode); v != "Offline" {
		t.Errorf("defaults did not round-trip: %q", v)
	}
}

func TestStore_IDsSorted(t *testing.T) {
	store, _ := Load("")
	ids := store.IDs()
	for i := 1; i < len(ids); i++ {
		if ids[i-1] > ids[i] {
			t.Errorf("IDs not sorted: %v", ids)
			break
		}
	}
}
