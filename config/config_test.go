// Copyright 2024 The Mercury Authors
// This file is part of Mercury.
//
// Mercury is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Mercury is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Mercury. If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canyala/mercury/heap"
)

func TestDefaultHasNoGraphsAndHeapDefaults(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.Graphs)
	assert.Equal(t, heap.DefaultConfig().InitialSize, cfg.Heap.InitialSize)
}

func TestLoadDecodesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mercury.toml")
	const doc = `
path = "/var/lib/mercury"
graphs = ["people", "movies"]
metrics_namespace = "mercury"

[heap]
initial_size = "1MB"
grow_increment = "8MB"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/mercury", cfg.Path)
	assert.Equal(t, []string{"people", "movies"}, cfg.Graphs)
	assert.Equal(t, "mercury", cfg.MetricsNamespace)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
