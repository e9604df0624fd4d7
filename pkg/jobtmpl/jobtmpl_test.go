package jobtmpl

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValueString(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"string", StringValue("debug"), "debug"},
		{"int", IntValue(4), "4"},
		{"fraction", NumberValue(2.5), "2.5"},
		{"large", NumberValue(1e12), "1000000000000"},
		{"negative", IntValue(-3), "-3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.String())
		})
	}
}

func TestValueEqual(t *testing.T) {
	assert.True(t, IntValue(4).Equal(NumberValue(4)))
	assert.False(t, IntValue(4).Equal(StringValue("4")))
	assert.True(t, StringValue("a").Equal(StringValue("a")))
}

func TestValueMarshalJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Value{"N": IntValue(8), "S": StringValue("x")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"N":8,"S":"x"}`, string(data))
}

func TestResolvedVariablesNames(t *testing.T) {
	vars := ResolvedVariables{
		"NPROCS":      IntValue(4),
		"FILE_MESH":   StringValue("/m"),
		"CASE":        StringValue("c"),
		"FILE_CONFIG": StringValue("/c"),
	}
	assert.Equal(t, []string{"FILE_CONFIG", "FILE_MESH", "CASE", "NPROCS"}, vars.Names())

	clone := vars.Clone()
	clone["EXTRA"] = IntValue(1)
	assert.NotContains(t, vars, "EXTRA")
}

func TestFileVarNames(t *testing.T) {
	assert.Equal(t, "FILE_MESH", FileVarName("mesh"))
	assert.Equal(t, "FILE_DATA_FILES_COUNT", FileCountVarName("data_files"))
}

func TestUploadedFilesYAML(t *testing.T) {
	var files UploadedFiles
	err := yaml.Unmarshal([]byte("mesh: /data/mesh.tar.gz\ndata:\n  - /a\n  - /b\none:\n  - /only\n"), &files)
	require.NoError(t, err)

	assert.Equal(t, SinglePath("/data/mesh.tar.gz"), files["mesh"])
	assert.Equal(t, MultiplePaths("/a", "/b"), files["data"])
	assert.True(t, files["one"].Multi)
	assert.Equal(t, "/a /b", files["data"].Joined())

	out, err := yaml.Marshal(files["mesh"])
	require.NoError(t, err)
	assert.Equal(t, "/data/mesh.tar.gz\n", string(out))
}

func TestUploadedFilesJSON(t *testing.T) {
	var files UploadedFiles
	require.NoError(t, json.Unmarshal([]byte(`{"mesh":"/m","data":["/a","/b"]}`), &files))
	assert.False(t, files["mesh"].Multi)
	assert.Equal(t, []string{"/a", "/b"}, files["data"].Paths)

	err := json.Unmarshal([]byte(`{"mesh":3}`), &files)
	assert.Error(t, err)
}

func TestTransformChainDecoding(t *testing.T) {
	var v struct {
		Single TransformChain `yaml:"single"`
		List   TransformChain `yaml:"list"`
		Empty  TransformChain `yaml:"empty"`
	}
	err := yaml.Unmarshal([]byte("single: to_int\nlist: [memory_to_mb, to_string]\nempty: \"\"\n"), &v)
	require.NoError(t, err)
	assert.Equal(t, TransformChain{"to_int"}, v.Single)
	assert.Equal(t, TransformChain{"memory_to_mb", "to_string"}, v.List)
	assert.Nil(t, v.Empty)

	var c TransformChain
	require.NoError(t, json.Unmarshal([]byte(`"basename"`), &c))
	assert.Equal(t, TransformChain{"basename"}, c)
	require.NoError(t, json.Unmarshal([]byte(`["dirname","uppercase"]`), &c))
	assert.Equal(t, TransformChain{"dirname", "uppercase"}, c)
}

func TestJobResourceConfigLookup(t *testing.T) {
	gpus := 2
	cfg := JobResourceConfig{Partition: "gpu", Nodes: 1, NTasks: 4, CPUsPerTask: 2, Mem: "8G", Time: "01:00:00", GPU: &gpus}

	v, ok := cfg.Lookup(FieldNTasks)
	require.True(t, ok)
	assert.Equal(t, IntValue(4), v)

	v, ok = cfg.Lookup(FieldMem)
	require.True(t, ok)
	assert.Equal(t, "8G", v.String())

	v, ok = cfg.Lookup(FieldGPU)
	require.True(t, ok)
	assert.Equal(t, "2", v.String())
	assert.Equal(t, 2, cfg.GPUCount())

	cfg.GPU = nil
	_, ok = cfg.Lookup(FieldGPU)
	assert.False(t, ok)
	assert.Zero(t, cfg.GPUCount())

	_, ok = ParseConfigField("account")
	assert.False(t, ok)
}

func TestErrorMessages(t *testing.T) {
	unknown := &TransformError{Transform: "reverse", Err: ErrUnknownTransform}
	assert.Equal(t, `unknown transform: "reverse"`, unknown.Error())
	assert.True(t, errors.Is(unknown, ErrUnknownTransform))

	missing := &MissingFileError{Variable: "FILE_MESH", Key: "mesh", Description: "Mesh archive"}
	assert.Equal(t, "required file not uploaded: Mesh archive (key: mesh)", missing.Error())
	assert.True(t, errors.Is(missing, ErrMissingFile))

	wrapped := &VariableError{Variable: "NPROCS", Err: &SourceError{Source: "job.x", Err: ErrUnsupportedSource}}
	assert.True(t, errors.Is(wrapped, ErrUnsupportedSource))
}
