package plugin

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, root string, m Manifest) string {
	t.Helper()

	dir := filepath.Join(root, m.Name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestFile), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return dir
}

func TestManager_Discover(t *testing.T) {
	root := t.TempDir()
	dir := writeManifest(t, root, Manifest{
		Name:        "coach",
		Version:     "1.0.0",
		Description: "Canned motivational messages",
		Executable:  "coach",
		Actions:     []string{ActionMotivate},
	})

	manager := NewManager(root)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 1 {
		t.Fatalf("expected 1 plugin, got %d", len(plugins))
	}

	plugin := plugins[0]
	if plugin.Manifest.Name != "coach" {
		t.Errorf("expected plugin name 'coach', got %q", plugin.Manifest.Name)
	}
	if plugin.Path != dir {
		t.Errorf("expected path %q, got %q", dir, plugin.Path)
	}
	if plugin.Executable != filepath.Join(dir, "coach") {
		t.Errorf("unexpected executable %q", plugin.Executable)
	}
}

func TestManager_List_Sorted(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"zeta", "alpha"} {
		writeManifest(t, root, Manifest{Name: name, Executable: name})
	}

	manager := NewManager(root)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(plugins))
	}
	if plugins[0].Manifest.Name != "alpha" {
		t.Errorf("expected alpha first, got %q", plugins[0].Manifest.Name)
	}
}

func TestManager_FindByAction(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, Manifest{Name: "logger", Executable: "logger", Actions: []string{"log"}})
	writeManifest(t, root, Manifest{Name: "coach", Executable: "coach", Actions: []string{ActionMotivate}})

	manager := NewManager(root)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugin, err := manager.FindByAction(ActionMotivate)
	if err != nil {
		t.Fatalf("FindByAction() failed: %v", err)
	}
	if plugin.Manifest.Name != "coach" {
		t.Errorf("expected coach, got %q", plugin.Manifest.Name)
	}

	if _, err := manager.FindByAction("dance"); err != ErrPluginNotFound {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
}

func TestManager_Get(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, Manifest{Name: "coach", Version: "2.0.0", Executable: "coach-bin"})

	manager := NewManager(root)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugin, err := manager.Get("coach")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if plugin.Manifest.Version != "2.0.0" {
		t.Errorf("expected version '2.0.0', got %q", plugin.Manifest.Version)
	}

	if _, err := manager.Get("nonexistent"); err != ErrPluginNotFound {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
}

func TestManager_Discover_Skips(t *testing.T) {
	t.Run("invalid json", func(t *testing.T) {
		root := t.TempDir()
		dir := filepath.Join(root, "bad")
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create plugin dir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, manifestFile), []byte("not valid json"), 0644); err != nil {
			t.Fatalf("failed to write manifest: %v", err)
		}

		manager := NewManager(root)
		if err := manager.Discover(); err != nil {
			t.Fatalf("Discover() failed unexpectedly: %v", err)
		}
		if n := len(manager.List()); n != 0 {
			t.Fatalf("expected 0 plugins, got %d", n)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		manager := NewManager("/path/that/does/not/exist")
		if err := manager.Discover(); err != nil {
			t.Fatalf("Discover() failed on non-existent dir: %v", err)
		}
		if n := len(manager.List()); n != 0 {
			t.Fatalf("expected 0 plugins, got %d", n)
		}
	})

	t.Run("unnamed manifest takes the directory name", func(t *testing.T) {
		root := t.TempDir()
		dir := filepath.Join(root, "quiet")
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create plugin dir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, manifestFile), []byte(`{"executable":"run"}`), 0644); err != nil {
			t.Fatalf("failed to write manifest: %v", err)
		}

		manager := NewManager(root)
		if err := manager.Discover(); err != nil {
			t.Fatalf("Discover() failed: %v", err)
		}
		if _, err := manager.Get("quiet"); err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
	})
}

func TestManager_PluginDir(t *testing.T) {
	manager := NewManager("/path/to/plugins")
	if manager.PluginDir() != "/path/to/plugins" {
		t.Errorf("unexpected plugin dir %q", manager.PluginDir())
	}
}
