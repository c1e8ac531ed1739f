// Package scene holds the game's scenes and the stack that drives them. Each frame the top scene
// processes input, every active scene updates, and every visible scene renders from the bottom of
// the stack up, so a pause menu can be drawn over a frozen game.
package scene

// Scene is one layer of the game: a title screen, a level, an overlay.
type Scene interface {
	// Name returns the scene name used in log records.
	Name() string

	// Initialize prepares the scene when it is pushed. A failed Initialize keeps the scene off the stack.
	//
	// Returns:
	//   - error: error if the scene cannot start
	Initialize() error

	// ProcessInput handles input. Only the top scene receives it.
	ProcessInput()

	// Update advances the scene by deltaTime seconds.
	//
	// Parameters:
	//   - deltaTime: frame duration in seconds
	Update(deltaTime float32)

	// Render issues the scene's draws inside the current frame.
	Render()

	// Finalize releases what Initialize acquired. Called when the scene leaves the stack.
	Finalize()

	// Play marks the scene active so it receives Update.
	Play()

	// Stop marks the scene inactive.
	Stop()

	// Show marks the scene visible so it receives Render.
	Show()

	// Hide marks the scene hidden.
	Hide()

	// Active reports whether the scene receives Update.
	Active() bool

	// Visible reports whether the scene receives Render.
	Visible() bool
}

// scene is a Scene assembled from callbacks.
type scene struct {
	name    string
	active  bool
	visible bool

	onInitialize   func() error
	onProcessInput func()
	onUpdate       func(deltaTime float32)
	onRender       func()
	onFinalize     func()
}

var _ Scene = &scene{}

// NewScene creates a scene whose behavior is supplied by callbacks. Scenes start stopped and
// visible; the stack plays the scene on Push.
//
// Parameters:
//   - name: the scene name
//   - options: SceneBuilderOption callbacks
//
// Returns:
//   - Scene: the scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		name:    name,
		visible: true,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Initialize() error {
	if s.onInitialize == nil {
		return nil
	}
	return s.onInitialize()
}

func (s *scene) ProcessInput() {
	if s.onProcessInput != nil {
		s.onProcessInput()
	}
}

func (s *scene) Update(deltaTime float32) {
	if s.onUpdate != nil {
		s.onUpdate(deltaTime)
	}
}

func (s *scene) Render() {
	if s.onRender != nil {
		s.onRender()
	}
}

func (s *scene) Finalize() {
	if s.onFinalize != nil {
		s.onFinalize()
	}
}

func (s *scene) Play() {
	s.active = true
}

func (s *scene) Stop() {
	s.active = false
}

func (s *scene) Show() {
	s.visible = true
}

func (s *scene) Hide() {
	s.visible = false
}

func (s *scene) Active() bool {
	return s.active
}

func (s *scene) Visible() bool {
	return s.visible
}
