package cmd

import (
	"path/filepath"
	"testing"

	"portalsync/internal/settings"
)

func TestSettingAccessorsCoverEveryKey(t *testing.T) {
	var s settings.Settings
	for _, key := range settingKeys {
		setSetting(&s, key, "value-"+key)
	}

	for _, key := range settingKeys {
		got := getSetting(s, key)
		if key == "password" {
			if got != "(set)" {
				t.Errorf("password renders %q, want masked", got)
			}
			continue
		}
		if got != "value-"+key {
			t.Errorf("getSetting(%q) = %q", key, got)
		}
	}
}

func TestValidKey(t *testing.T) {
	if !validKey("url") {
		t.Error("url must be a valid key")
	}
	if validKey("hostname") {
		t.Error("hostname must not be a valid key")
	}
}

func TestConfigSetThenGet(t *testing.T) {
	origCfgFile := cfgFile
	cfgFile = filepath.Join(t.TempDir(), "portalsync.yaml")
	defer func() { cfgFile = origCfgFile }()

	rootCmd.SetArgs([]string{"config", "set", "username", "ops@example.com"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("config set: %v", err)
	}

	st, err := openSettingsDefault()
	if err != nil {
		t.Fatal(err)
	}
	if got := st.Get().Username; got != "ops@example.com" {
		t.Errorf("username = %q", got)
	}
}
