package facegraph

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
)

// NodeType represents a Node's type. Node types are categorized, and can be said to extend or "be of" more general types.
// For example, an ambient light has a type of NodeTypeAmbientLight. That type can also be said to be NodeTypeLight
// (because it is a light), but it is not a NodeTypeDirectionalLight, as that is a different category.
type NodeType string

const (
	NodeTypeNode   NodeType = "Node"       // NodeTypeNode represents any generic node
	NodeTypeBone   NodeType = "NodeBone"   // NodeTypeBone represents a joint in a skeleton; it carries no geometry
	NodeTypeCamera NodeType = "NodeCamera" // NodeTypeCamera represents a node carrying a Camera
	NodeTypeMesh   NodeType = "NodeMesh"   // NodeTypeMesh represents a node created to carry a Drawable

	NodeTypeLight            NodeType = "NodeLight"            // NodeTypeLight represents any generic light
	NodeTypeAmbientLight     NodeType = "NodeLightAmbient"     // NodeTypeAmbientLight represents specifically an ambient light
	NodeTypeDirectionalLight NodeType = "NodeLightDirectional" // NodeTypeDirectionalLight represents specifically a directional (sun) light
)

// Is returns true if a NodeType satisfies another NodeType category. A specific node type can be said to
// contain a more general one, but not vice-versa. For example, a bone (NodeTypeBone) can be said to be a
// Node (NodeTypeNode), but the reverse is not true.
func (nt NodeType) Is(other NodeType) bool {
	if nt == other {
		return true
	}
	return strings.Contains(string(nt), string(other))
}

var nodeID atomic.Uint64

// Node is a positioned element of the scene graph. It owns its local transform and an ordered list of
// children, and caches its local and world matrices. Cameras, lights and drawables are capabilities
// attached to a Node rather than separate node kinds.
//
// Nodes are not safe for concurrent use; the graph is mutated and rendered from a single goroutine.
type Node struct {
	id       uint64
	name     string
	nodeType NodeType

	position mgl64.Vec3
	rotation mgl64.Quat
	scale    mgl64.Vec3

	localMatrix mgl64.Mat4
	worldMatrix mgl64.Mat4

	dirty bool
	// childrenDirty is set on every ancestor of a dirtied node so that a propagation pass started from a
	// clean root can still find the dirty subtree.
	childrenDirty bool
	updates       uint64

	visible   bool
	destroyed bool

	children []*Node
	parent   *Node
	scene    *Scene // Only set on a scene's root node

	camera    *Camera
	light     *Light
	drawables []*Drawable

	data  any // A place to store a pointer to something if you need it
	props *Properties
}

// NewNode returns a new Node with an identity transform.
func NewNode(name string) *Node {
	return newNode(name, NodeTypeNode)
}

// NewBone returns a new Node tagged as a skeleton joint.
func NewBone(name string) *Node {
	return newNode(name, NodeTypeBone)
}

func newNode(name string, nodeType NodeType) *Node {
	return &Node{
		id:          nodeID.Add(1),
		name:        name,
		nodeType:    nodeType,
		rotation:    mgl64.QuatIdent(),
		scale:       mgl64.Vec3{1, 1, 1},
		localMatrix: mgl64.Ident4(),
		worldMatrix: mgl64.Ident4(),
		dirty:       true,
		visible:     true,
	}
}

// ID returns the object's unique ID.
func (node *Node) ID() uint64 {
	return node.id
}

// Name returns the object's name.
func (node *Node) Name() string {
	return node.name
}

// SetName sets the object's name.
func (node *Node) SetName(name string) {
	node.name = name
}

// Type returns the NodeType for this object.
func (node *Node) Type() NodeType {
	return node.nodeType
}

// IsBone returns if the Node is a skeleton joint.
func (node *Node) IsBone() bool {
	return node.nodeType.Is(NodeTypeBone)
}

// SetData sets user-customizeable data that could be usefully stored on this node.
func (node *Node) SetData(data any) {
	node.data = data
}

// Data returns the user-customizeable data stored on this node.
func (node *Node) Data() any {
	return node.data
}

// Properties returns the Node's custom properties, creating the set on first use.
func (node *Node) Properties() *Properties {
	if node.props == nil {
		node.props = NewProperties()
	}
	return node.props
}

// Camera returns the Camera attached to this Node, or nil.
func (node *Node) Camera() *Camera {
	return node.camera
}

// Light returns the Light attached to this Node, or nil.
func (node *Node) Light() *Light {
	return node.light
}

// Drawables returns the Drawables attached to this Node, in draw order.
func (node *Node) Drawables() []*Drawable {
	return node.drawables
}

// AddDrawable attaches a Drawable to the Node. A Drawable may only belong to one Node; attaching it here
// detaches it from any previous owner.
func (node *Node) AddDrawable(drawable *Drawable) {
	if drawable.node != nil {
		drawable.node.RemoveDrawable(drawable)
	}
	drawable.node = node
	node.drawables = append(node.drawables, drawable)
}

// RemoveDrawable detaches a Drawable from the Node.
func (node *Node) RemoveDrawable(drawable *Drawable) {
	for i, d := range node.drawables {
		if d == drawable {
			node.drawables = append(node.drawables[:i], node.drawables[i+1:]...)
			drawable.node = nil
			return
		}
	}
}

// Parent returns the Node's parent. If the Node has no parent, this will return nil.
func (node *Node) Parent() *Node {
	return node.parent
}

// Children returns a copy of the Node's children slice.
func (node *Node) Children() []*Node {
	return append([]*Node(nil), node.children...)
}

// ChildrenRecursive returns all of the Node's descendants, depth-first in child order.
func (node *Node) ChildrenRecursive() []*Node {
	out := []*Node{}
	for _, child := range node.children {
		out = append(out, child)
		out = append(out, child.ChildrenRecursive()...)
	}
	return out
}

// Walk calls fn for the Node and each of its descendants, depth-first, parents before children. If fn
// returns false, the walk doesn't descend into that node's children.
func (node *Node) Walk(fn func(*Node) bool) {
	if !fn(node) {
		return
	}
	for _, child := range node.children {
		child.Walk(fn)
	}
}

// AddChildren parents the provided children Nodes to the passed parent Node, inheriting its transformations and being
// under it in the scenegraph hierarchy. If the children are already parented to other Nodes, they are unparented before
// doing so. Nodes that are destroyed, nil, or ancestors of the parent are ignored.
func (node *Node) AddChildren(children ...*Node) {

	for _, child := range children {

		if child == nil || child == node || child.destroyed {
			continue
		}

		if child.isAncestorOf(node) {
			assert(false, "adding an ancestor as a child would create a cycle")
			continue
		}

		if child.parent != nil {
			child.parent.RemoveChildren(child)
		}

		child.parent = node
		node.children = append(node.children, child)
		child.markDirty()

	}

}

// RemoveChildren removes the provided children from this object. The removed children keep their local
// transforms and become roots of their own trees.
func (node *Node) RemoveChildren(children ...*Node) {

	for _, child := range children {
		for i, c := range node.children {
			if c == child {
				child.parent = nil
				child.markDirty()
				node.children[i] = nil
				node.children = append(node.children[:i], node.children[i+1:]...)
				break
			}
		}
	}

}

// Unparent unparents the Node from its parent, removing it from the scenegraph.
func (node *Node) Unparent() {
	if node.parent != nil {
		node.parent.RemoveChildren(node)
	}
}

// Destroy detaches the Node from its parent and marks it destroyed. The Node's children are not destroyed;
// they stay parented to it and are released with it unless the caller reparents them.
func (node *Node) Destroy() {
	node.Unparent()
	node.destroyed = true
}

// Destroyed returns true if Destroy was called on the Node.
func (node *Node) Destroyed() bool {
	return node.destroyed
}

// Index returns the index of the Node in its parent's children list.
// If the node doesn't have a parent, its index will be -1.
func (node *Node) Index() int {
	if node.parent != nil {
		for i, c := range node.parent.children {
			if c == node {
				return i
			}
		}
	}
	return -1
}

// Root returns the root node in this tree by recursively traversing this node's hierarchy of parents upwards.
func (node *Node) Root() *Node {
	root := node
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// Scene returns the Scene whose root this Node's tree hangs from, or nil if the Node isn't part of a scene.
func (node *Node) Scene() *Scene {
	return node.Root().scene
}

// Attached returns true if the Node is not destroyed and belongs to a Scene.
func (node *Node) Attached() bool {
	return !node.destroyed && node.Scene() != nil
}

func (node *Node) isAncestorOf(other *Node) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == node {
			return true
		}
	}
	return false
}

// Visible returns whether the Node is visible. Invisible nodes and their descendants are skipped when drawing,
// but their transforms are still propagated.
func (node *Node) Visible() bool {
	return node.visible
}

// SetVisible sets the object's visibility. If recursive is true, all recursive children of this Node will have their
// visibility set the same way.
func (node *Node) SetVisible(visible bool, recursive bool) {
	node.visible = visible
	if recursive {
		for _, child := range node.children {
			child.SetVisible(visible, true)
		}
	}
}

// Get searches a node's hierarchy using a string to find a specified node. The path is in the format of names of nodes,
// separated by forward slashes ('/'), and is relative to the node you use to call Get. As an example, if you had an eye
// parented to a head, which was parented to the root of the scene, it would be found at "Head/Eye". "../" goes up one level
// in the hierarchy.
func (node *Node) Get(path string) *Node {

	current := node

	for _, s := range strings.Split(path, "/") {

		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}

		if s == ".." {
			current = current.parent
		} else {
			var found *Node
			for _, child := range current.children {
				if child.name == s {
					found = child
					break
				}
			}
			current = found
		}

		if current == nil {
			return nil
		}

	}

	return current

}

// Path returns a string indicating the hierarchical path to get this Node from the root. Passing it to Get() called on
// the root node will return this node. The path returned does not contain the root node's name.
func (node *Node) Path() string {

	root := node.Root()
	if root == node {
		return ""
	}

	path := node.name
	for parent := node.parent; parent != nil && parent != root; parent = parent.parent {
		path = parent.name + "/" + path
	}

	return path

}

// HierarchyAsString returns a string displaying the hierarchy of this Node, and all recursive children, with each
// node's world position as of the last propagation pass. This is a useful function to debug the layout of a node tree.
func (node *Node) HierarchyAsString() string {

	var printNode func(n *Node, level int) string

	printNode = func(n *Node, level int) string {

		prefix := "NODE"

		if level == 0 {
			prefix = "ROOT"
		} else if n.nodeType.Is(NodeTypeBone) {
			prefix = "BONE"
		} else if n.nodeType.Is(NodeTypeCamera) {
			prefix = "CAM"
		} else if n.nodeType.Is(NodeTypeAmbientLight) {
			prefix = "AMB"
		} else if n.nodeType.Is(NodeTypeDirectionalLight) {
			prefix = "DIR"
		} else if n.nodeType.Is(NodeTypeMesh) {
			prefix = "MESH"
		}

		var str strings.Builder

		for i := 0; i < level; i++ {
			str.WriteString("    |")
		}

		wp := n.worldMatrix.Col(3)
		wpStr := "[" + strconv.FormatFloat(wp[0], 'f', 2, 64) + ", " + strconv.FormatFloat(wp[1], 'f', 2, 64) + ", " + strconv.FormatFloat(wp[2], 'f', 2, 64) + "]"

		if level > 0 {
			str.WriteString("-")
		}
		str.WriteString(" [" + prefix + "] " + n.name + " : " + wpStr + "\n")

		for _, child := range n.children {
			str.WriteString(printNode(child, level+1))
		}

		return str.String()
	}

	return printNode(node, 0)

}
