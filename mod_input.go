package slabview

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Input codes for the controls the viewer actually binds.
const (
	Key1 int = iota
	Key2
	Key3
	KeyG
	KeyR
	KeyShift
	KeyEscape
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle
	inputCodeCount
)

type InputModule struct{}

type Input struct {
	Pressed      [inputCodeCount]bool
	JustPressed  [inputCodeCount]bool
	JustReleased [inputCodeCount]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	ScrollY                  float64

	WindowWidth, WindowHeight int
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{})
	app.UseSystem(
		System(inputSystem).
			InStage(Prelude),
	)
}

func inputSystem(s *WindowState, input *Input) {
	glfw.PollEvents()

	for key, glfwKey := range keyToGlfw {
		action := s.windowGlfw.GetKey(glfwKey)
		updateButton(input, key, action == glfw.Press)
	}

	for btn, glfwBtn := range buttonToGlfw {
		action := s.windowGlfw.GetMouseButton(glfwBtn)
		updateButton(input, btn, action == glfw.Press)
	}

	mx, my := s.windowGlfw.GetCursorPos()
	input.MouseDeltaX = mx - input.MouseX
	input.MouseDeltaY = my - input.MouseY
	input.MouseX = mx
	input.MouseY = my

	input.ScrollY = s.takeScroll()

	input.WindowWidth, input.WindowHeight = s.windowGlfw.GetSize()
}

func updateButton(input *Input, code int, down bool) {
	input.JustPressed[code] = false
	input.JustReleased[code] = false
	if down {
		if !input.Pressed[code] {
			input.JustPressed[code] = true
		}
		input.Pressed[code] = true
	} else {
		if input.Pressed[code] {
			input.JustReleased[code] = true
		}
		input.Pressed[code] = false
	}
}

var keyToGlfw = map[int]glfw.Key{
	Key1:      glfw.Key1,
	Key2:      glfw.Key2,
	Key3:      glfw.Key3,
	KeyG:      glfw.KeyG,
	KeyR:      glfw.KeyR,
	KeyShift:  glfw.KeyLeftShift,
	KeyEscape: glfw.KeyEscape,
}

var buttonToGlfw = map[int]glfw.MouseButton{
	MouseButtonLeft:   glfw.MouseButtonLeft,
	MouseButtonRight:  glfw.MouseButtonRight,
	MouseButtonMiddle: glfw.MouseButtonMiddle,
}
