package tui

import (
	"strings"
	"testing"

	"distrolabs/wslm/internal/config"
)

func testConfigModel(cfg *config.Config) configViewModel {
	return configViewModel{
		cfg:    cfg,
		keys:   config.Keys,
		width:  80,
		height: 24,
	}
}

func TestConfigEdit_PrefillsCurrentValue(t *testing.T) {
	m := testConfigModel(&config.Config{DefaultDistro: "Ubuntu"})

	updated, _ := m.beginEdit()
	m = updated.(configViewModel)

	if !m.editing {
		t.Fatal("expected editing after beginEdit")
	}
	if got := m.editor.Value(); got != "Ubuntu" {
		t.Fatalf("editor value = %q, want current setting", got)
	}
}

func TestConfigEdit_RejectedValueKeepsEditorOpen(t *testing.T) {
	cfg := &config.Config{}
	m := testConfigModel(cfg)

	// Select the retention key, which only accepts non-negative integers.
	for i, spec := range m.keys {
		if spec.Name == "history-retention-days" {
			m.cursor = i
		}
	}

	updated, _ := m.beginEdit()
	m = updated.(configViewModel)
	m.editor.SetValue("soon")

	updated, cmd := m.handleEditKey(keyMsg("enter"))
	m = updated.(configViewModel)

	if !m.editing {
		t.Fatal("editor should stay open after a rejected value")
	}
	if cmd != nil {
		t.Fatal("nothing should be saved for a rejected value")
	}
	if !m.isError || m.status == "" {
		t.Fatalf("expected an error status, got %q", m.status)
	}
	if cfg.HistoryRetentionDays != 0 {
		t.Errorf("config mutated by rejected value: %d", cfg.HistoryRetentionDays)
	}
}

func TestConfigSaved_NamesTheKey(t *testing.T) {
	m := testConfigModel(&config.Config{})
	m.editing = true

	updated, _ := m.Update(configSavedMsg{key: "default-distro"})
	m = updated.(configViewModel)

	if m.editing {
		t.Fatal("expected editing cleared after save")
	}
	if !strings.Contains(m.status, "default-distro") {
		t.Fatalf("status = %q, want the saved key named", m.status)
	}
}

func TestRenderSetting_UnsetValueShowsDash(t *testing.T) {
	m := testConfigModel(&config.Config{})

	row := m.renderSetting(m.keys[0], false)
	if !strings.Contains(row, "—") {
		t.Errorf("row = %q, want an em dash for the unset value", row)
	}
}
