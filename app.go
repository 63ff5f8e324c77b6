package slabview

import (
	"fmt"
	"reflect"
	"runtime"
)

type systemFn any

// App owns the resource table, the entity store and the per-stage system
// lists. Systems are plain functions; their parameters are resolved from the
// resource table by pointer type, with *Commands injected specially.
type App struct {
	stages  []Stage
	systems map[string][]systemFn

	resources map[reflect.Type]any
	store     *Store

	// Command buffering, flushed between stages.
	pendingAdditions []pendingAdd
	pendingRemovals  []EntityId
	pendingCompAdds  []pendingCompAdd
	pendingCompDrops []pendingCompDrop

	quit bool
}

type pendingAdd struct {
	eid        EntityId
	components []any
}

type pendingCompAdd struct {
	eid        EntityId
	components []any
}

type pendingCompDrop struct {
	eid        EntityId
	components []any
}

func (app *App) Commands() *Commands {
	return &Commands{app: app}
}

// Quit requests the run loop to stop after the current frame.
func (app *App) Quit() {
	app.quit = true
}

// Run steps frames until Quit is called (typically by the window module when
// the window is closed).
func (app *App) Run() {
	for !app.quit {
		app.Step()
	}
}

// Step runs every stage once, in order. Pointer input is resolved in the
// early stages and rendering happens in the late ones, so a frame always
// renders the state produced by its own input.
func (app *App) Step() {
	for _, stage := range app.stages {
		for _, system := range app.systems[stage.Name] {
			app.callSystem(system)
		}
		app.FlushCommands()
	}
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("resource %s must be a pointer", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}
		app.resources[resourceType.Elem()] = resource
	}
	return app
}

var (
	typeOfCommands = reflect.TypeOf(Commands{})
	typeOfApp      = reflect.TypeOf(App{})
)

func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if underlyingType == typeOfApp {
			args[i] = reflect.ValueOf(app)
		} else if resource, ok := app.resources[underlyingType]; ok {
			args[i] = reflect.ValueOf(resource)
		} else {
			msg := fmt.Sprintf("Unable to resolve system dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
				runtime.FuncForPC(systemValue.Pointer()).Name(),
				fmt.Sprint(systemType),
				fmt.Sprint(argType),
			)
			panic(msg)
		}
	}
	systemValue.Call(args)
}

func (app *App) FlushCommands() {
	if len(app.pendingAdditions) == 0 && len(app.pendingRemovals) == 0 &&
		len(app.pendingCompAdds) == 0 && len(app.pendingCompDrops) == 0 {
		return
	}

	// Removals first, so we never add components to dead entities.
	for _, eid := range app.pendingRemovals {
		app.store.removeEntity(eid)
	}
	app.pendingRemovals = app.pendingRemovals[:0]

	for _, add := range app.pendingAdditions {
		app.store.insertEntity(add.eid, add.components...)
	}
	app.pendingAdditions = app.pendingAdditions[:0]

	for _, add := range app.pendingCompAdds {
		app.store.addComponents(add.eid, add.components...)
	}
	app.pendingCompAdds = app.pendingCompAdds[:0]

	for _, drop := range app.pendingCompDrops {
		app.store.removeComponents(drop.eid, drop.components...)
	}
	app.pendingCompDrops = app.pendingCompDrops[:0]
}

// GetResource fetches an installed resource by its value type. Module Install
// code uses it to reach resources registered by earlier modules.
func GetResource[T any](app *App) (*T, bool) {
	var zero T
	r, ok := app.resources[reflect.TypeOf(zero)]
	if !ok {
		return nil, false
	}
	return r.(*T), true
}

// Logger returns the installed Logger resource, or a no-op logger if none is
// registered. Safe to call at any time; never returns nil.
func (app *App) Logger() Logger {
	if app == nil {
		return NewNopLogger()
	}
	for _, r := range app.resources {
		if l, ok := r.(Logger); ok {
			return l
		}
	}
	return NewNopLogger()
}
