// Package colors returns new *facegraph.Color values by name, for materials, lights and backgrounds that don't
// come from a configuration file.
package colors

import "github.com/openhuman/facegraph"

// Transparent returns fully transparent black.
func Transparent() *facegraph.Color {
	return facegraph.NewColor(0, 0, 0, 0)
}

func White() *facegraph.Color {
	return facegraph.NewColor(1, 1, 1, 1)
}

func Black() *facegraph.Color {
	return facegraph.NewColor(0, 0, 0, 1)
}

func Gray() *facegraph.Color {
	return facegraph.NewColor(0.5, 0.5, 0.5, 1)
}

// LightGray is the eye rig's backdrop, #cccccc.
func LightGray() *facegraph.Color {
	return facegraph.NewColorFromHex("#cccccc")
}

func Red() *facegraph.Color {
	return facegraph.NewColor(1, 0, 0, 1)
}

func Green() *facegraph.Color {
	return facegraph.NewColor(0, 1, 0, 1)
}

func Blue() *facegraph.Color {
	return facegraph.NewColor(0, 0, 1, 1)
}

// SteelBlue is the wireframe blue of the skinned cylinder, #156289.
func SteelBlue() *facegraph.Color {
	return facegraph.NewColorFromHex("#156289")
}

// Skin is a neutral skin tone for untextured heads.
func Skin() *facegraph.Color {
	return facegraph.NewColorFromHex("#e0ac69")
}

// Named returns the color with the given name ("white", "steelblue", and so on), or nil if there's none.
func Named(name string) *facegraph.Color {
	if fn, ok := named[name]; ok {
		return fn()
	}
	return nil
}

var named = map[string]func() *facegraph.Color{
	"transparent": Transparent,
	"white":       White,
	"black":       Black,
	"gray":        Gray,
	"lightgray":   LightGray,
	"red":         Red,
	"green":       Green,
	"blue":        Blue,
	"steelblue":   SteelBlue,
	"skin":        Skin,
}
