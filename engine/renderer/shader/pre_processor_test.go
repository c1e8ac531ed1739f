package shader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-sprite/engine/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestPreProcessorExpandsIncludes(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "sprite.frag")
	writeFile(t, root, "#version 330 core\n#include \"lib/lights.glsl\"\n  #include \"common.glsl\" // again\nvoid main() {}\n")
	writeFile(t, filepath.Join(dir, "lib", "lights.glsl"), "#include \"../common.glsl\"\nuniform vec3 ambLightCol;\n")
	writeFile(t, filepath.Join(dir, "common.glsl"), "const float PI = 3.14159;\n")

	pp := NewPreProcessor()
	out, err := pp.Process(root)
	require.NoError(t, err)

	assert.Equal(t, "#version 330 core\nconst float PI = 3.14159;\nuniform vec3 ambLightCol;\nvoid main() {}\n", out,
		"a file included twice expands once")
	assert.Equal(t, []string{
		root,
		filepath.Join(dir, "lib", "lights.glsl"),
		filepath.Join(dir, "common.glsl"),
	}, pp.Files())
}

func TestPreProcessorIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.glsl"), "#include \"b.glsl\"\nA\n")
	writeFile(t, filepath.Join(dir, "b.glsl"), "#include \"a.glsl\"\nB\n")

	out, err := NewPreProcessor().Process(filepath.Join(dir, "a.glsl"))
	require.NoError(t, err)
	assert.Equal(t, "B\nA\n", out)
}

func TestPreProcessorErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "missing.frag"), "#include \"nowhere.glsl\"\n")
	writeFile(t, filepath.Join(dir, "bad.frag"), "void f() {}\n#include nowhere.glsl\n")

	_, err := NewPreProcessor().Process(filepath.Join(dir, "missing.frag"))
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = NewPreProcessor().Process(filepath.Join(dir, "bad.frag"))
	assert.ErrorIs(t, err, ErrBuild)
	assert.Contains(t, err.Error(), "bad.frag:2")
}

func TestParseInclude(t *testing.T) {
	tests := []struct {
		line    string
		path    string
		ok      bool
		wantErr bool
	}{
		{line: "uniform mat4 matMVP;"},
		{line: `#include "a.glsl"`, path: "a.glsl", ok: true},
		{line: `   #include   "dir/b.wgsl"   `, path: "dir/b.wgsl", ok: true},
		{line: `#include "c.glsl" // shared`, path: "c.glsl", ok: true},
		{line: `#include ""`, wantErr: true},
		{line: `#include <d.glsl>`, wantErr: true},
		{line: `#include "e.glsl" trailing`, wantErr: true},
		{line: `// #include "commented.glsl"`},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			path, ok, err := parseInclude(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.path, path)
		})
	}
}

func TestBuildFromFilesExpandsIncludes(t *testing.T) {
	dev := gputest.NewDevice()
	dir := t.TempDir()
	vsPath := filepath.Join(dir, "sprite.vert")
	fsPath := filepath.Join(dir, "sprite.frag")
	lights := filepath.Join(dir, "lights.glsl")
	writeFile(t, vsPath, spriteVS)
	writeFile(t, lights, "uniform vec3 pointLightPos[8];\nuniform vec3 pointLightCol[8];\n")
	writeFile(t, fsPath, "#version 330 core\n#include \"lights.glsl\"\nout vec4 fragColor;\nvoid main() {\n\tfragColor = vec4(pointLightCol[0], 1.0);\n}\n")

	p, err := BuildFromFiles(dev, vsPath, fsPath)
	require.NoError(t, err)
	assert.True(t, p.Binding(UniformPointPosition).Present())
	assert.Equal(t, 8, p.Binding(UniformPointColor).Count())
	assert.Equal(t, []string{vsPath, fsPath, lights}, p.Sources())
}
