package scene

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects scene callbacks in call order.
type recorder struct {
	events []string
}

func (r *recorder) scene(name string, opts ...SceneBuilderOption) Scene {
	base := []SceneBuilderOption{
		WithInitialize(func() error { r.events = append(r.events, name+".init"); return nil }),
		WithProcessInput(func() { r.events = append(r.events, name+".input") }),
		WithUpdate(func(float32) { r.events = append(r.events, name+".update") }),
		WithRender(func() { r.events = append(r.events, name+".render") }),
		WithFinalize(func() { r.events = append(r.events, name+".final") }),
	}
	return NewScene(name, append(base, opts...)...)
}

func (r *recorder) take() []string {
	out := r.events
	r.events = nil
	return out
}

func TestNewSceneDefaults(t *testing.T) {
	s := NewScene("empty")
	assert.Equal(t, "empty", s.Name())
	assert.False(t, s.Active())
	assert.True(t, s.Visible())
	assert.NoError(t, s.Initialize())

	s.ProcessInput()
	s.Update(1)
	s.Render()
	s.Finalize()

	s.Play()
	s.Hide()
	assert.True(t, s.Active())
	assert.False(t, s.Visible())
}

func TestPushStopsPreviousScene(t *testing.T) {
	rec := &recorder{}
	st := NewStack()
	title, game := rec.scene("title"), rec.scene("game")

	require.NoError(t, st.Push(title))
	require.NoError(t, st.Push(game))

	assert.Equal(t, 2, st.Len())
	assert.Same(t, game, st.Current())
	assert.False(t, title.Active())
	assert.True(t, game.Active())
	assert.Equal(t, []string{"title.init", "game.init"}, rec.take())
}

func TestUpdateAndRenderOrder(t *testing.T) {
	rec := &recorder{}
	st := NewStack()
	require.NoError(t, st.Push(rec.scene("game")))
	require.NoError(t, st.Push(rec.scene("pause")))
	rec.take()

	st.Update(0.016)
	assert.Equal(t, []string{"pause.input", "pause.update"}, rec.take(), "only the top scene is active")

	st.Render()
	assert.Equal(t, []string{"game.render", "pause.render"}, rec.take(), "all visible scenes render bottom-up")

	st.Current().Hide()
	st.Render()
	assert.Equal(t, []string{"game.render"}, rec.take())
}

func TestPopResumesSceneBeneath(t *testing.T) {
	rec := &recorder{}
	st := NewStack()
	game, pause := rec.scene("game"), rec.scene("pause")
	require.NoError(t, st.Push(game))
	require.NoError(t, st.Push(pause))
	rec.take()

	st.Pop()
	assert.Equal(t, []string{"pause.final"}, rec.take())
	assert.False(t, pause.Active())
	assert.True(t, game.Active())
	assert.Same(t, game, st.Current())

	st.Pop()
	assert.True(t, st.Empty())
	assert.Nil(t, st.Current())

	st.Pop()
	assert.Equal(t, []string{"game.final"}, rec.take(), "pop of an empty stack does nothing")
}

func TestReplace(t *testing.T) {
	rec := &recorder{}
	st := NewStack()

	require.NoError(t, st.Replace(rec.scene("title")), "replace on empty stack pushes")
	require.NoError(t, st.Replace(rec.scene("game")))

	assert.Equal(t, 1, st.Len())
	assert.Equal(t, "game", st.Current().Name())
	assert.Equal(t, []string{"title.init", "title.final", "game.init"}, rec.take())
}

func TestInitializeFailure(t *testing.T) {
	rec := &recorder{}
	st := NewStack()
	game := rec.scene("game")
	require.NoError(t, st.Push(game))

	boom := errors.New("missing asset")
	broken := NewScene("broken", WithInitialize(func() error { return boom }))

	err := st.Push(broken)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, st.Len())
	assert.True(t, game.Active(), "failed push leaves the current scene playing")

	require.NoError(t, st.Push(rec.scene("menu")))
	err = st.Replace(broken)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, st.Len())
	assert.Same(t, game, st.Current())
	assert.True(t, game.Active())

	assert.Error(t, st.Push(nil))
}

func TestPushDuringUpdateTakesEffectNextFrame(t *testing.T) {
	rec := &recorder{}
	st := NewStack()
	pushed := false
	require.NoError(t, st.Push(rec.scene("game", WithUpdate(func(float32) {
		rec.events = append(rec.events, "game.update")
		if !pushed {
			pushed = true
			require.NoError(t, st.Push(rec.scene("dialog")))
		}
	}))))
	rec.take()

	st.Update(0.016)
	assert.Equal(t, []string{"game.input", "game.update", "dialog.init"}, rec.take())

	st.Update(0.016)
	assert.Equal(t, []string{"dialog.input", "dialog.update"}, rec.take())
}

func TestClearFinalizesTopFirst(t *testing.T) {
	rec := &recorder{}
	st := NewStack()
	require.NoError(t, st.Push(rec.scene("a")))
	require.NoError(t, st.Push(rec.scene("b")))
	rec.take()

	st.Clear()
	assert.Equal(t, []string{"b.final", "a.final"}, rec.take())
	assert.True(t, st.Empty())
}
