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

package env

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canyala/mercury/config"
)

func TestOpenInMemoryGraphRoundTrip(t *testing.T) {
	e, err := Open(config.Default())
	require.NoError(t, err)
	defer e.Close()

	g, err := e.Graph("people")
	require.NoError(t, err)
	require.NoError(t, g.Assert("Luke", "parent", "Anakin"))

	same, err := e.Graph("people")
	require.NoError(t, err)
	ok, err := same.IsTrue("Luke", "parent", "Anakin")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCloseIsIdempotent(t *testing.T) {
	e, err := Open(config.Default())
	require.NoError(t, err)
	_, err = e.Graph("default")
	require.NoError(t, err)
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())
}

func TestGraphAfterCloseFails(t *testing.T) {
	e, err := Open(config.Default())
	require.NoError(t, err)
	require.NoError(t, e.Close())
	_, err = e.Graph("anything")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPersistedEnvironmentReopensAcrossGraphs(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Path = dir

	e1, err := Open(cfg)
	require.NoError(t, err)
	g1, err := e1.Graph("people")
	require.NoError(t, err)
	require.NoError(t, g1.Assert("Luke", "parent", "Anakin"))
	require.NoError(t, e1.Close())

	e2, err := Open(cfg)
	require.NoError(t, err)
	defer e2.Close()
	g2, err := e2.Graph("people")
	require.NoError(t, err)
	ok, err := g2.IsTrue("Luke", "parent", "Anakin")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.FileExists(t, filepath.Join(dir, "people.mercury"))
}

func TestEagerlyConfiguredGraphsOpenOnOpen(t *testing.T) {
	cfg := config.Default()
	cfg.Graphs = []string{"a", "b"}
	e, err := Open(cfg)
	require.NoError(t, err)
	defer e.Close()

	assert.Len(t, e.graphs, 2)
}
