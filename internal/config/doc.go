// Package config provides configuration management for splitpack.
//
// This package handles:
//   - Loading settings from YAML files and SPLITPACK_* environment variables
//   - Saving settings back to YAML
//   - Default configuration values
//   - Conversion to model.SplitRequest and model.RestoreRequest
//
// # Loading
//
//	settings, err := config.Load("")                 // .splitpack.yaml in CWD or $HOME
//	settings, err := config.Load("/etc/splitpack.yaml")
//
// A missing file is not an error; defaults are used.
//
// # Saving Settings
//
//	settings.PartSize = "700MB"
//	err := settings.Save("/home/me/.splitpack.yaml")
//
// # Building Requests
//
//	req, err := settings.ToSplitRequest("/data/backup.tar", password)
package config
