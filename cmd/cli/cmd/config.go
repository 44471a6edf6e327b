package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"portalsync/internal/settings"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and edit the stored settings",
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a setting, or all settings when no key is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openSettingsDefault()
		if err != nil {
			return err
		}
		s := st.Get()

		if len(args) == 0 {
			for _, key := range settingKeys {
				fmt.Printf("%s: %s\n", key, getSetting(s, key))
			}
			return nil
		}

		key := args[0]
		if !validKey(key) {
			return fmt.Errorf("unknown setting %q (one of %v)", key, settingKeys)
		}
		fmt.Println(getSetting(s, key))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if !validKey(key) {
			return fmt.Errorf("unknown setting %q (one of %v)", key, settingKeys)
		}

		st, err := openSettingsDefault()
		if err != nil {
			return err
		}
		s := st.Get()
		setSetting(&s, key, value)
		return st.Put(s)
	},
}

// settingKeys are the editable settings, matching the PORTALSYNC_* env names.
var settingKeys = []string{
	"url",
	"username",
	"password",
	"download_folder",
	"destination_folder",
	"spreadsheet_path",
	"updater_path",
}

func validKey(key string) bool {
	for _, k := range settingKeys {
		if k == key {
			return true
		}
	}
	return false
}

func getSetting(s settings.Settings, key string) string {
	switch key {
	case "url":
		return s.URL
	case "username":
		return s.Username
	case "password":
		if s.Password == "" {
			return ""
		}
		return "(set)"
	case "download_folder":
		return s.DownloadFolder
	case "destination_folder":
		return s.DestinationFolder
	case "spreadsheet_path":
		return s.SpreadsheetPath
	case "updater_path":
		return s.UpdaterPath
	}
	return ""
}

func setSetting(s *settings.Settings, key, value string) {
	switch key {
	case "url":
		s.URL = value
	case "username":
		s.Username = value
	case "password":
		s.Password = value
	case "download_folder":
		s.DownloadFolder = value
	case "destination_folder":
		s.DestinationFolder = value
	case "spreadsheet_path":
		s.SpreadsheetPath = value
	case "updater_path":
		s.UpdaterPath = value
	}
}

func openSettings(path string) (*settings.Store, error) {
	return settings.Open(path)
}

func openSettingsDefault() (*settings.Store, error) {
	path, err := settingsPath()
	if err != nil {
		return nil, err
	}
	return openSettings(path)
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
