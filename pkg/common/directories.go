// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package common holds the locations of chesster's files.
package common

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const Permissions = 0755

var (
	Directory string = filepath.Join(xdg.DataHome, "chesster")

	ArchiveFile string = filepath.Join(Directory, "archive.db")
	RecordsDir  string = filepath.Join(Directory, "records")

	ConfigFile string = filepath.Join(xdg.ConfigHome, "chesster", "config.yaml")
)

// EnsureDirectories creates chesster's data directories if they are
// missing.
func EnsureDirectories() error {
	for _, dir := range []string{Directory, RecordsDir} {
		if err := TryMkdir(dir); err != nil {
			return err
		}
	}

	return nil
}

// TryMkdir creates the directory and its parents if it doesn't exist.
func TryMkdir(dir string) error {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return os.MkdirAll(dir, Permissions)
	}

	return nil
}

// DefaultConfig returns the user's config file if it exists, or an empty
// path otherwise.
func DefaultConfig() string {
	if _, err := os.Stat(ConfigFile); err != nil {
		return ""
	}

	return ConfigFile
}
