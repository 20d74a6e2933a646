package facegraph

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Properties is an unordered set of property names to values, carrying custom data on Nodes (for example,
// the "extras" a glTF exporter writes for each node).
type Properties struct {
	props map[string]*Property
}

// NewProperties returns a new Properties object.
func NewProperties() *Properties {
	return &Properties{map[string]*Property{}}
}

func (props *Properties) Clone() *Properties {
	newProps := NewProperties()
	for k, v := range props.props {
		newProps.Get(k).Set(v.Value)
	}
	return newProps
}

// Clear clears the Properties object of all properties.
func (props *Properties) Clear() {
	props.props = map[string]*Property{}
}

// Remove removes the property specified from the Properties object.
func (props *Properties) Remove(propName string) {
	delete(props.props, propName)
}

// Has returns true if the Properties object has properties by all of the names specified, and false otherwise.
func (props *Properties) Has(propNames ...string) bool {
	for _, t := range propNames {
		if _, exists := props.props[t]; !exists {
			return false
		}
	}
	return true
}

// Get returns the Property associated with the specified name, creating an empty one if it doesn't exist yet.
func (props *Properties) Get(propName string) *Property {
	if _, ok := props.props[propName]; !ok {
		props.props[propName] = &Property{}
	}
	return props.props[propName]
}

// Names returns the names of the properties in sorted order.
func (props *Properties) Names() []string {
	names := make([]string, 0, len(props.props))
	for k := range props.props {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of properties.
func (props *Properties) Count() int {
	return len(props.props)
}

// Property represents a custom value on a Node.
type Property struct {
	Value any
}

// Set sets the property's value to the given value.
func (prop *Property) Set(value any) {
	prop.Value = value
}

// IsBool returns true if the Property is a boolean value.
func (prop *Property) IsBool() bool {
	_, ok := prop.Value.(bool)
	return ok
}

// AsBool returns the value associated with the Property as a bool.
// Note that this does not sanity check to ensure the Property is a bool first.
func (prop *Property) AsBool() bool {
	return prop.Value.(bool)
}

// IsString returns true if the Property is a string.
func (prop *Property) IsString() bool {
	_, ok := prop.Value.(string)
	return ok
}

// AsString returns the value associated with the Property as a string.
func (prop *Property) AsString() string {
	return prop.Value.(string)
}

// IsNumber returns true if the Property holds a float64 or an int. Numbers decoded from JSON are float64s.
func (prop *Property) IsNumber() bool {
	switch prop.Value.(type) {
	case float64, int:
		return true
	}
	return false
}

// AsFloat64 returns the value associated with the Property as a float64. Ints are converted.
func (prop *Property) AsFloat64() float64 {
	if i, ok := prop.Value.(int); ok {
		return float64(i)
	}
	return prop.Value.(float64)
}

// IsColor returns true if the Property is a *Color.
func (prop *Property) IsColor() bool {
	_, ok := prop.Value.(*Color)
	return ok
}

// AsColor returns the value associated with the Property as a *Color.
func (prop *Property) AsColor() *Color {
	return prop.Value.(*Color)
}

// IsVec3 returns true if the Property is a vector, either an mgl64.Vec3 or a list of three numbers.
func (prop *Property) IsVec3() bool {
	_, ok := prop.vec3()
	return ok
}

// AsVec3 returns the value associated with the Property as an mgl64.Vec3, or a zero vector if it isn't one.
func (prop *Property) AsVec3() mgl64.Vec3 {
	v, _ := prop.vec3()
	return v
}

func (prop *Property) vec3() (mgl64.Vec3, bool) {
	switch value := prop.Value.(type) {
	case mgl64.Vec3:
		return value, true
	case []any:
		if len(value) != 3 {
			return mgl64.Vec3{}, false
		}
		v := mgl64.Vec3{}
		for i, c := range value {
			f, ok := c.(float64)
			if !ok {
				return mgl64.Vec3{}, false
			}
			v[i] = f
		}
		return v, true
	}
	return mgl64.Vec3{}, false
}
