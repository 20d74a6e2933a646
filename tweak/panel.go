package tweak

import (
	"encoding/json"
	"log"
	"reflect"
	"sync"

	"github.com/openhuman/facegraph"
	"github.com/pkg/errors"
)

// Folder groups controls under a name.
type Folder struct {
	Name  string
	panel *Panel
}

// Add binds a control to the exported field named field of the struct obj points to. The field must be a number or a
// bool; min, max and step describe a number's slider and are ignored for bools.
func (folder *Folder) Add(obj any, field string, min, max, step float64) (*Control, error) {
	kind, get, set, err := bindField(obj, field)
	if err != nil {
		return nil, err
	}
	return folder.panel.add(&Control{
		folder: folder.Name,
		name:   field,
		kind:   kind,
		min:    min,
		max:    max,
		step:   step,
		get:    get,
		set:    set,
	})
}

// AddNumber adds a slider driven by accessor functions, for values that aren't struct fields (morph influences, for
// example).
func (folder *Folder) AddNumber(name string, min, max, step float64, get func() float64, set func(float64)) (*Control, error) {
	return folder.panel.add(&Control{
		folder: folder.Name,
		name:   name,
		kind:   KindNumber,
		min:    min,
		max:    max,
		step:   step,
		get:    func() any { return get() },
		set:    func(x any) { set(x.(float64)) },
	})
}

// AddColor adds a color picker editing color's RGB components. Alpha is left alone.
func (folder *Folder) AddColor(name string, color *facegraph.Color) (*Control, error) {
	if color == nil {
		return nil, errors.Errorf("tweak: color %q is nil", name)
	}
	return folder.panel.add(&Control{
		folder: folder.Name,
		name:   name,
		kind:   KindColor,
		get:    func() any { return color.Hex() },
		set: func(x any) {
			c := x.(*facegraph.Color)
			color.SetRGBA(c.R, c.G, c.B, color.A)
		},
	})
}

// AddSelect adds a drop-down choosing between options.
func (folder *Folder) AddSelect(name string, options []string, get func() string, set func(string)) (*Control, error) {
	if len(options) == 0 {
		return nil, errors.Errorf("tweak: select %q has no options", name)
	}
	return folder.panel.add(&Control{
		folder:  folder.Name,
		name:    name,
		kind:    KindSelect,
		options: append([]string(nil), options...),
		get:     func() any { return get() },
		set:     func(x any) { set(x.(string)) },
	})
}

type edit struct {
	control *Control
	value   any
}

// Panel holds every control. Controls are read and written only from the goroutine calling Apply and Sync; the HTTP
// side works from the snapshot Sync leaves behind and a queue of pending edits.
type Panel struct {
	mu       sync.Mutex
	folders  []*Folder
	controls []*Control
	byKey    map[string]*Control
	edits    []edit
	snapshot []State

	hub *hub
}

// NewPanel returns an empty Panel.
func NewPanel() *Panel {
	return &Panel{
		byKey: map[string]*Control{},
		hub:   newHub(),
	}
}

// Folder returns the folder with the given name, creating it if necessary.
func (panel *Panel) Folder(name string) *Folder {
	panel.mu.Lock()
	defer panel.mu.Unlock()
	for _, f := range panel.folders {
		if f.Name == name {
			return f
		}
	}
	f := &Folder{Name: name, panel: panel}
	panel.folders = append(panel.folders, f)
	return f
}

func (panel *Panel) add(c *Control) (*Control, error) {
	panel.mu.Lock()
	defer panel.mu.Unlock()
	if _, exists := panel.byKey[c.key()]; exists {
		return nil, errors.Errorf("tweak: control %s already exists", c.key())
	}
	panel.controls = append(panel.controls, c)
	panel.byKey[c.key()] = c
	panel.snapshot = append(panel.snapshot, c.state())
	return c, nil
}

// Remove drops every control in the named folder, along with the folder.
func (panel *Panel) Remove(folder string) {
	panel.mu.Lock()
	defer panel.mu.Unlock()

	kept := make([]*Control, 0, len(panel.controls))
	for _, c := range panel.controls {
		if c.folder == folder {
			delete(panel.byKey, c.key())
			continue
		}
		kept = append(kept, c)
	}
	panel.controls = kept

	for i, f := range panel.folders {
		if f.Name == folder {
			panel.folders = append(panel.folders[:i], panel.folders[i+1:]...)
			break
		}
	}

	snapshot := make([]State, 0, len(panel.snapshot))
	for _, s := range panel.snapshot {
		if s.Folder != folder {
			snapshot = append(snapshot, s)
		}
	}
	panel.snapshot = snapshot

	edits := panel.edits[:0]
	for _, e := range panel.edits {
		if e.control.folder != folder {
			edits = append(edits, e)
		}
	}
	panel.edits = edits
}

// Set queues an edit of the control folder/name. The value is checked now but only written on the next Apply.
func (panel *Panel) Set(folder, name string, value any) error {
	panel.mu.Lock()
	defer panel.mu.Unlock()

	c, ok := panel.byKey[folder+"/"+name]
	if !ok {
		return errors.Wrapf(ErrUnknownControl, "%s/%s", folder, name)
	}

	v, err := c.normalize(value)
	if err != nil {
		return err
	}

	panel.edits = append(panel.edits, edit{control: c, value: v})
	return nil
}

// Apply writes queued edits to their controls, calls OnChange handlers, and then Syncs. It must be called from the
// goroutine that owns the bound values, between frames. It returns the number of edits applied.
func (panel *Panel) Apply() int {

	panel.mu.Lock()
	edits := panel.edits
	panel.edits = nil
	panel.mu.Unlock()

	for _, e := range edits {
		e.control.set(e.value)
		if e.control.onChange != nil {
			e.control.onChange()
		}
	}

	panel.Sync()

	return len(edits)

}

// Sync refreshes the panel's snapshot from the bound values and pushes any that changed to connected clients. Call it
// after changing bound values from code.
func (panel *Panel) Sync() {

	panel.mu.Lock()

	changed := []State{}
	for i, c := range panel.controls {
		s := c.state()
		if !reflect.DeepEqual(panel.snapshot[i].Value, s.Value) {
			changed = append(changed, s)
		}
		panel.snapshot[i] = s
	}

	panel.mu.Unlock()

	if len(changed) > 0 {
		panel.broadcast(message{Type: "update", Controls: changed})
	}

}

// Controls returns the most recent snapshot of every control, in the order they were added.
func (panel *Panel) Controls() []State {
	panel.mu.Lock()
	defer panel.mu.Unlock()
	return append([]State(nil), panel.snapshot...)
}

// Control returns the most recent snapshot of a single control.
func (panel *Panel) Control(folder, name string) (State, bool) {
	panel.mu.Lock()
	defer panel.mu.Unlock()
	for _, s := range panel.snapshot {
		if s.Folder == folder && s.Name == name {
			return s, true
		}
	}
	return State{}, false
}

// Pending returns the number of queued edits.
func (panel *Panel) Pending() int {
	panel.mu.Lock()
	defer panel.mu.Unlock()
	return len(panel.edits)
}

// message is what clients receive over the websocket.
type message struct {
	Type     string  `json:"type"` // "controls" for the full list, "update" for changed values
	Controls []State `json:"controls"`
}

func (panel *Panel) broadcast(msg message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[tweak] Warning: can't encode %s message: %v", msg.Type, err)
		return
	}
	panel.hub.broadcast(data)
}
