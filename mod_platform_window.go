package slabview

import (
	"reflect"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowState owns the single GLFW window shared by input and rendering.
// It also implements CursorSink for the interaction controller.
type WindowState struct {
	windowGlfw   *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string

	scrollY float64
	cursors map[Cursor]*glfw.Cursor
	current Cursor
}

func createWindowState(windowWidth, windowHeight int, windowTitle string) *WindowState {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		panic(err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // surface is driven by wgpu, not OpenGL
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		panic(err)
	}

	s := &WindowState{
		windowGlfw:   win,
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
		windowTitle:  windowTitle,
		cursors:      map[Cursor]*glfw.Cursor{},
	}
	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		s.scrollY += yoff
	})
	return s
}

// takeScroll drains the wheel offset accumulated since the last frame.
func (s *WindowState) takeScroll() float64 {
	v := s.scrollY
	s.scrollY = 0
	return v
}

func (s *WindowState) SetCursor(c Cursor) {
	if c == s.current {
		return
	}
	s.current = c
	cur, ok := s.cursors[c]
	if !ok {
		switch c {
		case CursorPointer:
			cur = glfw.CreateStandardCursor(glfw.HandCursor)
		case CursorGrab:
			cur = glfw.CreateStandardCursor(glfw.CrosshairCursor)
		default:
			cur = glfw.CreateStandardCursor(glfw.ArrowCursor)
		}
		s.cursors[c] = cur
	}
	s.windowGlfw.SetCursor(cur)
}

func (s *WindowState) ShouldClose() bool {
	return s.windowGlfw.ShouldClose()
}

// PlatformWindowModule ensures a single shared GLFW window (WindowState) is
// created and made available as a resource for the renderer and input
// modules. Install is idempotent: an existing WindowState resource is reused.
type PlatformWindowModule struct {
	Width  int
	Height int
	Title  string
}

func NewPlatformWindow(width, height int, title string) *PlatformWindowModule {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "Slab Viewer"
	}
	return &PlatformWindowModule{
		Width:  width,
		Height: height,
		Title:  title,
	}
}

func (m PlatformWindowModule) Install(app *App, cmd *Commands) {
	t := reflect.TypeOf((*WindowState)(nil)).Elem()
	if _, ok := app.resources[t]; ok {
		return
	}

	ws := createWindowState(m.Width, m.Height, m.Title)
	app.addResources(ws)

	app.UseSystem(
		System(windowCloseSystem).
			InStage(Finale),
	)
}

func windowCloseSystem(s *WindowState, input *Input, app *App) {
	if s.ShouldClose() || input.JustPressed[KeyEscape] {
		app.Quit()
	}
}
