// Package tweak is a small debug panel: controls are grouped in folders and bound, by
// reflection or by accessor functions, to values in the running scene. The panel is driven over HTTP and a websocket.
// Edits arriving from the network are queued and only written to the scene when the frame loop calls Panel.Apply, so
// the scene graph is never touched off the frame goroutine.
package tweak

import (
	"math"
	"reflect"

	"github.com/openhuman/facegraph"
	"github.com/pkg/errors"
)

// ErrUnknownControl is returned when editing a control that doesn't exist.
var ErrUnknownControl = errors.New("unknown control")

// ErrBadValue is returned when an edit's value doesn't suit its control.
var ErrBadValue = errors.New("bad control value")

// Kind is the type of value a Control edits.
type Kind string

const (
	KindNumber Kind = "number"
	KindBool   Kind = "bool"
	KindColor  Kind = "color"  // "#rrggbb" strings
	KindSelect Kind = "select" // One of Options
)

// State is a snapshot of a Control, as served to the panel.
type State struct {
	Folder  string   `json:"folder"`
	Name    string   `json:"name"`
	Kind    Kind     `json:"kind"`
	Value   any      `json:"value"`
	Min     float64  `json:"min,omitempty"`
	Max     float64  `json:"max,omitempty"`
	Step    float64  `json:"step,omitempty"`
	Options []string `json:"options,omitempty"`
}

// Control is one editable value.
type Control struct {
	folder   string
	name     string
	kind     Kind
	min      float64
	max      float64
	step     float64
	options  []string
	get      func() any
	set      func(any)
	onChange func()
}

// OnChange sets a function to be called, on the frame goroutine, after the control's value is changed from the panel.
func (c *Control) OnChange(fn func()) *Control {
	c.onChange = fn
	return c
}

// Name returns the control's name.
func (c *Control) Name() string {
	return c.name
}

func (c *Control) key() string {
	return c.folder + "/" + c.name
}

func (c *Control) state() State {
	return State{
		Folder:  c.folder,
		Name:    c.name,
		Kind:    c.kind,
		Value:   c.get(),
		Min:     c.min,
		Max:     c.max,
		Step:    c.step,
		Options: c.options,
	}
}

// normalize checks an incoming value against the control and converts it to the type set expects. Numbers are clamped
// to the control's range.
func (c *Control) normalize(value any) (any, error) {

	switch c.kind {

	case KindNumber:
		x, ok := value.(float64)
		if !ok || math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, errors.Wrapf(ErrBadValue, "%s wants a number, got %v", c.key(), value)
		}
		if c.min < c.max {
			x = math.Min(math.Max(x, c.min), c.max)
		}
		return x, nil

	case KindBool:
		x, ok := value.(bool)
		if !ok {
			return nil, errors.Wrapf(ErrBadValue, "%s wants a bool, got %v", c.key(), value)
		}
		return x, nil

	case KindColor:
		x, ok := value.(string)
		if !ok {
			return nil, errors.Wrapf(ErrBadValue, "%s wants a color, got %v", c.key(), value)
		}
		color := facegraph.NewColorFromHex(x)
		if color.Hex() != normalizeHex(x) {
			return nil, errors.Wrapf(ErrBadValue, "%s: %q is not a #rrggbb color", c.key(), x)
		}
		return color, nil

	case KindSelect:
		x, ok := value.(string)
		if ok {
			for _, o := range c.options {
				if o == x {
					return x, nil
				}
			}
		}
		return nil, errors.Wrapf(ErrBadValue, "%s: %v is not one of %v", c.key(), value, c.options)

	}

	return nil, errors.Wrapf(ErrBadValue, "%s has unknown kind %q", c.key(), c.kind)

}

func normalizeHex(s string) string {
	b := []byte(s)
	if len(b) > 0 && b[0] == '#' {
		b = b[1:]
	}
	for i, ch := range b {
		if ch >= 'A' && ch <= 'F' {
			b[i] = ch + ('a' - 'A')
		}
	}
	return "#" + string(b)
}

// bindField returns accessors for an exported numeric or bool field of the struct obj points to.
func bindField(obj any, field string) (Kind, func() any, func(any), error) {

	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return "", nil, nil, errors.Errorf("tweak: %T is not a pointer to a struct", obj)
	}

	f := v.Elem().FieldByName(field)
	if !f.IsValid() {
		return "", nil, nil, errors.Errorf("tweak: %T has no field %q", obj, field)
	}

	if !f.CanSet() {
		return "", nil, nil, errors.Errorf("tweak: field %q of %T is not exported", field, obj)
	}

	switch f.Kind() {

	case reflect.Float32, reflect.Float64:
		return KindNumber, func() any { return f.Float() }, func(x any) { f.SetFloat(x.(float64)) }, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return KindNumber,
			func() any { return float64(f.Int()) },
			func(x any) { f.SetInt(int64(math.Round(x.(float64)))) },
			nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindNumber,
			func() any { return float64(f.Uint()) },
			func(x any) { f.SetUint(uint64(math.Max(0, math.Round(x.(float64))))) },
			nil

	case reflect.Bool:
		return KindBool, func() any { return f.Bool() }, func(x any) { f.SetBool(x.(bool)) }, nil

	}

	return "", nil, nil, errors.Errorf("tweak: field %q of %T has unsupported kind %s", field, obj, f.Kind())

}
