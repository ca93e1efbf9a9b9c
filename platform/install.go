package platform

import (
	"errors"
	"time"
)

// ErrEmptyRegistryKey is returned when an uninstall entry has no key.
var ErrEmptyRegistryKey = errors.New("empty registry key")

// AppInfo describes an installed application for the system's uninstall
// list.
type AppInfo struct {
	DisplayName     string `yaml:"display_name"`
	DisplayVersion  string `yaml:"display_version,omitempty"`
	Publisher       string `yaml:"publisher,omitempty"`
	InstallLocation string `yaml:"install_location"`
	UninstallString string `yaml:"uninstall_string"`

	DisplayIcon   string `yaml:"display_icon,omitempty"`
	URLInfoAbout  string `yaml:"url_info_about,omitempty"`
	HelpLink      string `yaml:"help_link,omitempty"`
	InstallDate   string `yaml:"install_date,omitempty"` // YYYYMMDD
	EstimatedSize uint32 `yaml:"estimated_size,omitempty"` // KB
	NoModify      bool   `yaml:"no_modify,omitempty"`
	NoRepair      bool   `yaml:"no_repair,omitempty"`
}

// withDefaults fills DisplayIcon and InstallDate when they are empty.
func (info AppInfo) withDefaults() AppInfo {
	if info.DisplayIcon == "" {
		info.DisplayIcon = info.UninstallString
	}
	if info.InstallDate == "" {
		info.InstallDate = time.Now().Format("20060102")
	}
	return info
}
