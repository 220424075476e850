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

package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryMkdir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	require.NoError(t, TryMkdir(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// existing directories are left alone
	assert.NoError(t, TryMkdir(dir))
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()

	directory, records := Directory, RecordsDir
	t.Cleanup(func() { Directory, RecordsDir = directory, records })

	Directory = filepath.Join(root, "chesster")
	RecordsDir = filepath.Join(Directory, "records")

	require.NoError(t, EnsureDirectories())
	assert.DirExists(t, RecordsDir)
}

func TestDefaultConfig(t *testing.T) {
	file := ConfigFile
	t.Cleanup(func() { ConfigFile = file })

	ConfigFile = filepath.Join(t.TempDir(), "config.yaml")
	assert.Empty(t, DefaultConfig())

	require.NoError(t, os.WriteFile(ConfigFile, nil, 0644))
	assert.Equal(t, ConfigFile, DefaultConfig())
}
