// Package fieldstone is a declarative, observable model layer for
// desktop application state.
//
// Models are declared as schemas of typed fields with defaults,
// constraints, and persistence scope tags. Writes to a model are
// validated, change-detected, delivered synchronously to attached
// observers, and dirty-tracked. Scope-filtered persistence managers
// load and save model state to settings and workspace documents; a
// service registry wires collaborators together without global state.
//
// A presenter typically declares a schema once:
//
//	var playerSchema = model.MustNew("player",
//		field.Field{
//			Name:    "volume",
//			Type:    field.TypeInt,
//			Default: 50,
//			Scope:   field.ScopeSetting,
//			Minimum: field.MinValue(0),
//			Maximum: field.MaxValue(100),
//		},
//		field.Field{
//			Name:    "theme",
//			Type:    field.TypeEnum,
//			Default: "light",
//			Scope:   field.ScopeSetting,
//			Choices: []any{"light", "dark"},
//		},
//	)
//
// then instantiates it, registers it with a persistence manager
// (which applies previously saved values through the validated setter
// path), and attaches itself as an observer:
//
//	m := playerSchema.Instantiate()
//	settings := persist.NewSettings(path)
//	if err := settings.Register("player", m); err != nil { ... }
//	m.Attach(presenter)
//
//	m.Set("volume", 80)       // validates, notifies, marks dirty
//	settings.Save("player")   // persists setting-scoped fields
//	m.ClearDirty()
package fieldstone
