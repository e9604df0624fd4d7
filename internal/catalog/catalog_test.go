package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/me/jobscript/pkg/jobtmpl"
)

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	l, err := NewLoader(nil)
	require.NoError(t, err)
	return l
}

func TestLoad_File(t *testing.T) {
	c, err := newTestLoader(t).Load("testdata/openfoam.yaml")
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	tmpl, ok := c.Get("openfoam_solver")
	require.True(t, ok)
	assert.Equal(t, "OpenFOAM Solver", tmpl.DisplayName)
	assert.Equal(t, jobtmpl.CategorySimulation, tmpl.Category)
	assert.True(t, tmpl.Command.RequiresMPI)
	assert.Equal(t, jobtmpl.TransformChain{"memory_to_mb"}, tmpl.Variables.Dynamic["MEMORY_MB"].Transform)
	assert.Equal(t, jobtmpl.TransformChain{"time_to_seconds", "time_to_minutes"}, tmpl.Variables.Dynamic["WALL_MINUTES"].Transform)
	assert.Empty(t, tmpl.Variables.Dynamic["NPROCS"].Transform)
	assert.Equal(t, "case", tmpl.Variables.InputFiles["case"].FileKey)
	assert.True(t, tmpl.Variables.OutputFiles["residuals"].Collect)
	assert.Equal(t, []string{"tar xzf $FILE_CASE"}, tmpl.PreCommands)
}

func TestLoad_Directory(t *testing.T) {
	c, err := newTestLoader(t).Load("testdata")
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	var ids []string
	for _, tmpl := range c.List() {
		ids = append(ids, tmpl.TemplateID)
	}
	assert.Equal(t, []string{"openfoam_solver", "paraview_render", "python_script"}, ids)

	vis := c.ByCategory(jobtmpl.CategoryVisualization)
	require.Len(t, vis, 1)
	assert.Equal(t, "paraview_render", vis[0].TemplateID)

	_, ok := c.Get("nope")
	assert.False(t, ok)
}

func TestLoad_DuplicateID(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile("testdata/openfoam.yaml")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), data, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), data, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	_, err = newTestLoader(t).Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate template_id "openfoam_solver"`)
}

func TestLoad_MissingPath(t *testing.T) {
	_, err := newTestLoader(t).Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_SchemaViolation(t *testing.T) {
	doc := []byte(`
template_id: broken
category: astrology
command:
  requires_mpi: "yes"
`)
	_, err := newTestLoader(t).Parse(doc, "broken.yaml")
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "broken.yaml", ve.Source)

	fields := map[string]bool{}
	for _, d := range ve.Details {
		fields[d.Field] = true
	}
	assert.True(t, fields["(root)"], "missing display_name should be reported: %v", ve.Details)
	assert.True(t, fields["category"], "bad category should be reported: %v", ve.Details)
	assert.True(t, fields["command"], "missing format should be reported: %v", ve.Details)
	assert.True(t, fields["command.requires_mpi"], "bad requires_mpi type should be reported: %v", ve.Details)
}

func TestParse_UnknownTransformFailsAtLoad(t *testing.T) {
	doc := []byte(`
template_id: bad_transform
display_name: Bad transform
command:
  format: run --mem $MEM
variables:
  dynamic:
    MEM:
      source: slurm.mem
      transform: memory_to_pb
    ACCOUNT:
      source: slurm.account
    HOME:
      source: env.home
`)
	_, err := newTestLoader(t).Parse(doc, "bad.yaml")
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Details, 3)
	assert.Equal(t, "variables.dynamic.ACCOUNT.source", ve.Details[0].Field)
	assert.Contains(t, ve.Details[0].Message, "field not found")
	assert.Equal(t, "variables.dynamic.HOME.source", ve.Details[1].Field)
	assert.Contains(t, ve.Details[1].Message, "unsupported source type")
	assert.Equal(t, "variables.dynamic.MEM.transform", ve.Details[2].Field)
	assert.Contains(t, ve.Details[2].Message, "memory_to_pb")
}

func TestParse_InvalidNames(t *testing.T) {
	doc := []byte(`
template_id: bad_names
display_name: Bad names
command:
  format: run
variables:
  input_files:
    "mesh-file":
      file_key: "mesh file"
`)
	_, err := newTestLoader(t).Parse(doc, "names.yaml")
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Details, 2)
	assert.Equal(t, "variables.input_files.mesh-file", ve.Details[0].Field)
	assert.Equal(t, "variables.input_files.mesh-file.file_key", ve.Details[1].Field)
}

func TestParse_Malformed(t *testing.T) {
	l := newTestLoader(t)

	_, err := l.Parse([]byte("template_id: [unclosed"), "x.yaml")
	assert.ErrorContains(t, err, "YAML parse error")

	_, err = l.Parse([]byte(""), "empty.yaml")
	assert.ErrorContains(t, err, "empty document")

	_, err = l.Parse([]byte("- a\n- b\n"), "list.yaml")
	assert.ErrorContains(t, err, "expected a mapping")

	_, err = l.Parse([]byte("templates: nope\n"), "t.yaml")
	assert.ErrorContains(t, err, "templates must be a list")
}

func TestCatalog_Add(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(&jobtmpl.CommandTemplate{TemplateID: "a"}))
	assert.Error(t, c.Add(&jobtmpl.CommandTemplate{TemplateID: "a"}))
	assert.Equal(t, 1, c.Len())
}
