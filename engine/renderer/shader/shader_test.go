package shader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-sprite/engine/gpu"
	"github.com/Carmen-Shannon/oxy-sprite/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-sprite/engine/light"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const spriteVS = `#version 330 core
layout(location = 0) in vec3 vPosition;
layout(location = 1) in vec4 vColor;
layout(location = 2) in vec2 vTexCoord;
out vec4 outColor;
out vec2 outTexCoord;
uniform mat4 matMVP;
void main() {
	outColor = vColor;
	outTexCoord = vTexCoord;
	gl_Position = matMVP * vec4(vPosition, 1.0);
}
`

const litFS = `#version 330 core
in vec4 outColor;
in vec2 outTexCoord;
out vec4 fragColor;
uniform sampler2D colorSampler;
uniform vec3 ambLightCol;
uniform vec3 dirLightDir;
uniform vec3 dirLightCol;
uniform vec3 pointLightPos[8];
uniform vec3 pointLightCol[8];
uniform vec4 spotLightDir[4];
uniform vec4 spotLightPos[4];
uniform vec3 spotLightCol[4];
void main() {
	fragColor = outColor * texture(colorSampler, outTexCoord);
}
`

const ambientOnlyFS = `#version 330 core
in vec4 outColor;
out vec4 fragColor;
uniform vec3 ambLightCol;
void main() {
	fragColor = outColor * vec4(ambLightCol, 1.0);
}
`

func writeSources(t *testing.T, vs, fs string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	vsPath := filepath.Join(dir, "sprite.vert")
	fsPath := filepath.Join(dir, "sprite.frag")
	require.NoError(t, os.WriteFile(vsPath, []byte(vs), 0o644))
	require.NoError(t, os.WriteFile(fsPath, []byte(fs), 0o644))
	return vsPath, fsPath
}

func TestBuildResolvesBindings(t *testing.T) {
	dev := gputest.NewDevice()

	p, err := Build(dev, spriteVS, litFS, WithLabel("lit"))
	require.NoError(t, err)
	require.True(t, p.Valid())
	assert.Equal(t, "lit", p.Label())
	assert.Equal(t, 1, p.RefCount())

	assert.True(t, p.Binding(UniformViewProjection).Present())
	assert.Equal(t, 8, p.Binding(UniformPointPosition).Count())
	assert.Equal(t, 4, p.Binding(UniformSpotColor).Count())
	assert.False(t, p.Binding("notAUniform").Present())

	// Shader objects are deleted after linking; only the program remains.
	assert.Equal(t, 1, dev.Live())
	assert.Equal(t, 1, dev.LivePrograms())
}

func TestBuildSyntaxErrorLeavesNoResources(t *testing.T) {
	tests := []struct {
		name string
		vs   string
		fs   string
	}{
		{"vertex", "void main() {", litFS},
		{"fragment", spriteVS, "void main() { fragColor = vec4(1.0);"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := gputest.NewDevice()

			p, err := Build(dev, tt.vs, tt.fs)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrBuild))
			assert.True(t, errors.Is(err, gpu.ErrCompile))
			assert.False(t, errors.Is(err, ErrIO))
			assert.Contains(t, err.Error(), "syntax error")

			require.NotNil(t, p)
			assert.False(t, p.Valid())
			assert.Equal(t, gpu.ProgramID(0), p.ID())
			assert.Equal(t, 0, dev.Live())
		})
	}
}

func TestBuildLinkErrorLeavesNoResources(t *testing.T) {
	dev := gputest.NewDevice()
	dev.FailLink = "error: vertex output outColor not consumed"

	p, err := Build(dev, spriteVS, litFS)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBuild)
	assert.ErrorIs(t, err, gpu.ErrLink)
	assert.Contains(t, err.Error(), "outColor")
	assert.False(t, p.Valid())
	assert.Equal(t, 0, dev.Live())
}

func TestInvalidProgramIsNoOp(t *testing.T) {
	dev := gputest.NewDevice()
	p, err := Build(dev, "{", litFS)
	require.Error(t, err)

	assert.NotPanics(t, func() {
		p.Use()
		p.BindTexture(0, 3)
		p.SetLightList(light.LightList{})
		p.SetViewProjectionMatrix([16]float32{})
	})
	assert.Empty(t, dev.Uploads)
	assert.False(t, p.Binding(UniformViewProjection).Present())

	var nilProgram *program
	assert.NotPanics(t, func() { nilProgram.Use() })
	assert.False(t, nilProgram.Valid())
}

func TestBuildFromFilesIOFailureIsDistinct(t *testing.T) {
	dev := gputest.NewDevice()
	vsPath, _ := writeSources(t, spriteVS, litFS)

	p, err := BuildFromFiles(dev, vsPath, filepath.Join(t.TempDir(), "missing.frag"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.False(t, errors.Is(err, ErrBuild))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, p.Valid())
	assert.Equal(t, 0, dev.Live())
}

func TestBuildFromFiles(t *testing.T) {
	dev := gputest.NewDevice()
	vsPath, fsPath := writeSources(t, spriteVS, litFS)

	p, err := BuildFromFiles(dev, vsPath, fsPath)
	require.NoError(t, err)
	assert.True(t, p.Valid())

	gotVS, gotFS := p.Paths()
	assert.Equal(t, vsPath, gotVS)
	assert.Equal(t, fsPath, gotFS)
	assert.Equal(t, vsPath, p.Label())
}

func TestSetLightListSkipsAbsentBindings(t *testing.T) {
	dev := gputest.NewDevice()
	p, err := Build(dev, spriteVS, ambientOnlyFS)
	require.NoError(t, err)

	ll := light.LightList{Ambient: light.AmbientLight{Color: [3]float32{1, 1, 1}}}
	for i := range ll.Point.Color {
		ll.Point.Color[i] = [3]float32{0, 0, 0}
	}

	assert.NotPanics(t, func() { p.SetLightList(ll) })

	assert.Empty(t, dev.UploadsNamed(UniformPointPosition))
	assert.Empty(t, dev.UploadsNamed(UniformPointColor))
	assert.Empty(t, dev.UploadsNamed(UniformSpotColor))

	amb := dev.UploadsNamed(UniformAmbientColor)
	require.Len(t, amb, 1)
	assert.Equal(t, [][3]float32{{1, 1, 1}}, amb[0].Vec3)
	assert.Equal(t, p.ID(), amb[0].Program)
	assert.Equal(t, ll, p.LightList())
}

func TestSetLightListUploadsEveryPresentBinding(t *testing.T) {
	dev := gputest.NewDevice()
	p, err := Build(dev, spriteVS, litFS)
	require.NoError(t, err)

	ll, _ := light.NewLightList([3]float32{0.2, 0.2, 0.2},
		light.NewLight(light.LightTypeDirectional, light.WithDirection(0, 0, -1)),
		light.NewLight(light.LightTypePoint, light.WithPosition(5, 6, 7), light.WithColor(1, 0, 0)),
		light.NewLight(light.LightTypeSpot, light.WithPosition(1, 1, 1)),
	)
	p.SetLightList(ll)

	for _, name := range []string{
		UniformAmbientColor, UniformDirectionalDir, UniformDirectionalColor,
		UniformPointPosition, UniformPointColor,
		UniformSpotDirAndCutOff, UniformSpotPosAndInnerCO, UniformSpotColor,
	} {
		assert.Len(t, dev.UploadsNamed(name), 1, name)
	}

	pos := dev.UploadsNamed(UniformPointPosition)[0]
	require.Len(t, pos.Vec3, light.MaxPointLights)
	assert.Equal(t, [3]float32{5, 6, 7}, pos.Vec3[0])
	assert.Len(t, dev.UploadsNamed(UniformSpotDirAndCutOff)[0].Vec4, light.MaxSpotLights)
	assert.Equal(t, [3]float32{0, 0, -1}, dev.UploadsNamed(UniformDirectionalDir)[0].Vec3[0])

	// An unchanged list is not uploaded again.
	dev.Reset()
	p.SetLightList(ll)
	assert.Empty(t, dev.Uploads)

	ll.Ambient.Color = [3]float32{1, 0, 0}
	p.SetLightList(ll)
	assert.Len(t, dev.UploadsNamed(UniformAmbientColor), 1)
}

func TestSetViewProjectionMatrix(t *testing.T) {
	dev := gputest.NewDevice()
	p, err := Build(dev, spriteVS, litFS)
	require.NoError(t, err)

	m := [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 10, 20, 0, 1}
	p.SetViewProjectionMatrix(m)

	ups := dev.UploadsNamed(UniformViewProjection)
	require.Len(t, ups, 1)
	assert.Equal(t, m, *ups[0].Matrix)
	assert.Equal(t, m, p.ViewProjectionMatrix())

	// A program without the binding stores the matrix but uploads nothing.
	noMVP, err := Build(dev, "void main() { gl_Position = vec4(0.0); }", ambientOnlyFS)
	require.NoError(t, err)
	dev.Reset()
	noMVP.SetViewProjectionMatrix(m)
	assert.Empty(t, dev.Uploads)
	assert.Equal(t, m, noMVP.ViewProjectionMatrix())
}

func TestDebugValidatesArrayLengths(t *testing.T) {
	shortFS := `uniform vec3 pointLightPos[6];
uniform vec3 pointLightCol[8];
void main() {}
`
	dev := gputest.NewDevice()

	p, err := Build(dev, spriteVS, shortFS, WithDebug(true))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBuild)
	assert.Contains(t, err.Error(), "pointLightPos")
	assert.False(t, p.Valid())
	assert.Equal(t, 0, dev.Live())

	p, err = Build(dev, spriteVS, shortFS, WithDebug(false))
	require.NoError(t, err)
	assert.Equal(t, 6, p.Binding(UniformPointPosition).Count())

	// Uploads are clamped to the declared length.
	p.SetLightList(light.LightList{})
	assert.Len(t, dev.UploadsNamed(UniformPointPosition)[0].Vec3, 6)
}

func TestProgramSharedOwnership(t *testing.T) {
	dev := gputest.NewDevice()
	p, err := Build(dev, spriteVS, litFS)
	require.NoError(t, err)

	shared := p.Retain()
	assert.Equal(t, 2, p.RefCount())

	p.Release()
	assert.True(t, shared.Valid())
	assert.Equal(t, 1, dev.LivePrograms())

	shared.Release()
	assert.False(t, shared.Valid())
	assert.Equal(t, 0, dev.LivePrograms())

	assert.NotPanics(t, func() { shared.Release() })
	assert.Equal(t, 0, shared.RefCount())
}

func TestReload(t *testing.T) {
	dev := gputest.NewDevice()
	vsPath, fsPath := writeSources(t, spriteVS, ambientOnlyFS)

	p, err := BuildFromFiles(dev, vsPath, fsPath)
	require.NoError(t, err)
	first := p.ID()

	ll := light.LightList{Ambient: light.AmbientLight{Color: [3]float32{0.5, 0.5, 0.5}}}
	p.SetLightList(ll)

	require.NoError(t, os.WriteFile(fsPath, []byte(litFS), 0o644))
	dev.Reset()
	require.NoError(t, p.Reload())

	assert.NotEqual(t, first, p.ID())
	assert.Equal(t, 1, dev.LivePrograms())
	assert.True(t, p.Binding(UniformPointColor).Present())
	// Cached state is pushed to the new program.
	assert.Len(t, dev.UploadsNamed(UniformAmbientColor), 1)
	assert.Len(t, dev.UploadsNamed(UniformPointColor), 1)

	// A broken edit keeps the previous program.
	second := p.ID()
	require.NoError(t, os.WriteFile(fsPath, []byte("void main() {"), 0o644))
	err = p.Reload()
	assert.ErrorIs(t, err, ErrBuild)
	assert.Equal(t, second, p.ID())
	assert.True(t, p.Valid())

	fromStrings, err := Build(dev, spriteVS, litFS)
	require.NoError(t, err)
	assert.Error(t, fromStrings.Reload())
}
