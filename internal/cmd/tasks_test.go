package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	oerrors "github.com/pyskel/cli/internal/errors"
	"github.com/pyskel/cli/internal/task"
)

func TestTasks_Table(t *testing.T) {
	out, err := execute(t, "tasks")
	require.NoError(t, err)

	for _, name := range task.Builtin().Names() {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "--no-watch")
	assert.Contains(t, out, "--platforms")
}

func TestTasks_YAML(t *testing.T) {
	out, err := execute(t, "tasks", "-o", "yaml")
	require.NoError(t, err)

	var infos []taskInfo
	require.NoError(t, yaml.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, len(task.Builtin().Names()))
	assert.Equal(t, "clean", infos[0].Name)

	var docs taskInfo
	for _, info := range infos {
		if info.Name == "docs" {
			docs = info
		}
	}
	assert.True(t, docs.Serves)
}

func TestTasks_JSON(t *testing.T) {
	out, err := execute(t, "tasks", "-o", "json")
	require.NoError(t, err)

	var infos []taskInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))

	var cp taskInfo
	for _, info := range infos {
		if info.Name == "docker-cp" {
			cp = info
		}
	}
	require.NotEmpty(t, cp.Options)
	names := make([]string, 0, len(cp.Options))
	for _, o := range cp.Options {
		names = append(names, o.Name)
	}
	assert.Contains(t, names, "build-image")
	assert.Contains(t, names, "output")
}

func TestTasks_InvalidFormat(t *testing.T) {
	_, err := execute(t, "tasks", "-o", "xml")
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrUsage)
}
