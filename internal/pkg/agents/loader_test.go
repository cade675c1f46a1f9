package agents

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDefinition(t *testing.T, dir, subdir, file, content string) string {
	t.Helper()
	target := filepath.Join(dir, subdir)
	require.NoError(t, os.MkdirAll(target, 0755))
	path := filepath.Join(target, file)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoader_LoadFromDir(t *testing.T) {
	dir := t.TempDir()
	writeDefinition(t, dir, "agents", "analyst.yaml", "name: analyst\nrole: Analyst\ngoal: Analyze\nbackstory: You analyze things.\n")
	writeDefinition(t, dir, "agents", "broken.yml", "name: broken\n")
	writeDefinition(t, dir, "agents", "notes.txt", "ignored")
	writeDefinition(t, dir, "tasks", "analyze.yaml", "name: analyze\nagent: analyst\ndescription: Analyze {query}\nexpectedOutput: Analysis\n")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tasks", "nested"), 0755))

	reg := NewRegistry()
	loader := NewLoader(NewParser(), reg)

	results, err := loader.LoadFromDir(dir)
	require.NoError(t, err)
	require.Len(t, results, 3, "非 yaml 文件和子目录应被跳过")

	actions := map[string]string{}
	for _, r := range results {
		actions[filepath.Base(r.Path)] = r.Action
	}
	assert.Equal(t, "created", actions["analyst.yaml"])
	assert.Equal(t, "failed", actions["broken.yml"])
	assert.Equal(t, "created", actions["analyze.yaml"])

	assert.True(t, reg.Exists("analyst"))
	task, err := reg.GetTask("analyze")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "tasks", "analyze.yaml"), task.Path)
}

func TestLoader_MissingDir(t *testing.T) {
	loader := NewLoader(NewParser(), NewRegistry())
	results, err := loader.LoadFromDir(filepath.Join(t.TempDir(), "absent"))
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestLoader_UpdateAction(t *testing.T) {
	fsys := fstest.MapFS{
		"agents/a.yaml": {Data: []byte("name: analyst\nrole: Analyst\ngoal: Analyze\nbackstory: First.\n")},
	}
	override := fstest.MapFS{
		"agents/b.yaml": {Data: []byte("name: analyst\nrole: Analyst\ngoal: Analyze\nbackstory: Second.\n")},
	}

	reg := NewRegistry()
	loader := NewLoader(NewParser(), reg)

	results, err := loader.LoadFromFS(fsys, "base")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "created", results[0].Action)
	assert.Equal(t, KindAgent, results[0].Kind)

	results, err = loader.LoadFromFS(override, "override")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "updated", results[0].Action)

	agent, err := reg.Get("analyst")
	require.NoError(t, err)
	assert.Equal(t, "Second.", agent.Backstory)
}

func TestLoader_OnlyTasks(t *testing.T) {
	fsys := fstest.MapFS{
		"tasks/t.yaml": {Data: []byte("name: t\nagent: a\ndescription: Do {query}\nexpectedOutput: Done\n")},
	}
	reg := NewRegistry()
	results, err := NewLoader(NewParser(), reg).LoadFromFS(fsys, "mem")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, KindTask, results[0].Kind)
	assert.Equal(t, "t", results[0].Name)
}
