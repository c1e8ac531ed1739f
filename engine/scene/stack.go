package scene

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-sprite/engine/log"
)

// stack is the implementation of the Stack interface.
type stack struct {
	scenes []Scene
	logger *log.Logger
}

// Stack orders the game's scenes. The top scene is the one the player interacts with; scenes
// beneath it stay allocated and keep rendering while visible.
type Stack interface {
	// Push stops the current scene, initializes s and plays it on top.
	//
	// Parameters:
	//   - s: the scene to push
	//
	// Returns:
	//   - error: the Initialize error; the stack is left as it was
	Push(s Scene) error

	// Pop stops and finalizes the top scene and plays the one beneath. No-op on an empty stack.
	Pop()

	// Replace finalizes the top scene and puts s in its place. Equivalent to Push on an empty stack.
	//
	// Returns:
	//   - error: the Initialize error; the old top is already gone and the scene beneath resumes
	Replace(s Scene) error

	// Current returns the top scene, or nil when the stack is empty.
	Current() Scene

	// Len returns the number of scenes.
	Len() int

	// Empty reports whether the stack holds no scene.
	Empty() bool

	// Update sends input to the top scene and updates every active scene, bottom first. Scenes
	// pushed or popped during Update take effect from the next frame.
	//
	// Parameters:
	//   - deltaTime: frame duration in seconds
	Update(deltaTime float32)

	// Render renders every visible scene, bottom first.
	Render()

	// Clear finalizes every scene, top first.
	Clear()
}

var _ Stack = &stack{}

// NewStack creates an empty scene stack.
//
// Parameters:
//   - options: StackBuilderOption values
//
// Returns:
//   - Stack: the stack
func NewStack(options ...StackBuilderOption) Stack {
	s := &stack{}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (st *stack) Push(s Scene) error {
	if s == nil {
		return fmt.Errorf("push of nil scene")
	}
	if err := s.Initialize(); err != nil {
		st.logger.Warn("scene initialize failed", "scene", s.Name(), "error", err)
		return fmt.Errorf("scene %q: %w", s.Name(), err)
	}
	if cur := st.Current(); cur != nil {
		cur.Stop()
	}
	st.scenes = append(st.scenes, s)
	s.Play()
	st.logger.Debug("scene pushed", "scene", s.Name(), "depth", len(st.scenes))
	return nil
}

func (st *stack) Pop() {
	cur := st.Current()
	if cur == nil {
		st.logger.Warn("pop of empty scene stack")
		return
	}
	cur.Stop()
	cur.Finalize()
	st.scenes[len(st.scenes)-1] = nil
	st.scenes = st.scenes[:len(st.scenes)-1]
	if next := st.Current(); next != nil {
		next.Play()
	}
	st.logger.Debug("scene popped", "scene", cur.Name(), "depth", len(st.scenes))
}

func (st *stack) Replace(s Scene) error {
	if st.Empty() {
		return st.Push(s)
	}
	if s == nil {
		return fmt.Errorf("replace with nil scene")
	}
	old := st.scenes[len(st.scenes)-1]
	old.Stop()
	old.Finalize()
	st.scenes = st.scenes[:len(st.scenes)-1]

	if err := s.Initialize(); err != nil {
		st.logger.Warn("scene initialize failed", "scene", s.Name(), "error", err)
		if next := st.Current(); next != nil {
			next.Play()
		}
		return fmt.Errorf("scene %q: %w", s.Name(), err)
	}
	st.scenes = append(st.scenes, s)
	s.Play()
	st.logger.Debug("scene replaced", "old", old.Name(), "new", s.Name())
	return nil
}

func (st *stack) Current() Scene {
	if len(st.scenes) == 0 {
		return nil
	}
	return st.scenes[len(st.scenes)-1]
}

func (st *stack) Len() int {
	return len(st.scenes)
}

func (st *stack) Empty() bool {
	return len(st.scenes) == 0
}

func (st *stack) Update(deltaTime float32) {
	if len(st.scenes) == 0 {
		return
	}
	snapshot := append([]Scene(nil), st.scenes...)
	snapshot[len(snapshot)-1].ProcessInput()
	for _, s := range snapshot {
		if s.Active() {
			s.Update(deltaTime)
		}
	}
}

func (st *stack) Render() {
	for _, s := range append([]Scene(nil), st.scenes...) {
		if s.Visible() {
			s.Render()
		}
	}
}

func (st *stack) Clear() {
	for len(st.scenes) > 0 {
		top := st.scenes[len(st.scenes)-1]
		top.Stop()
		top.Finalize()
		st.scenes = st.scenes[:len(st.scenes)-1]
	}
}
