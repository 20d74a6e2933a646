package facegraph

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// LocalPosition returns the Node's position relative to its parent.
func (node *Node) LocalPosition() mgl64.Vec3 {
	return node.position
}

// LocalRotation returns the Node's unit rotation relative to its parent.
func (node *Node) LocalRotation() mgl64.Quat {
	return node.rotation
}

// LocalScale returns the Node's scale relative to its parent.
func (node *Node) LocalScale() mgl64.Vec3 {
	return node.scale
}

// SetLocalTransform overwrites the Node's position, rotation and scale in one step and marks the Node and all of its
// descendants dirty. Matrices are not recomputed until the next propagation pass.
//
// Every component is validated before anything is written: scale components must be finite and greater than zero, the
// position must be finite, and the rotation must be finite and non-zero (it is normalized before being stored).
// A rejected call returns an error wrapping ErrDomain and leaves the Node untouched.
func (node *Node) SetLocalTransform(position mgl64.Vec3, rotation mgl64.Quat, scale mgl64.Vec3) error {

	if err := validatePosition(position); err != nil {
		return err
	}
	if err := validateRotation(rotation); err != nil {
		return err
	}
	if err := validateScale(scale); err != nil {
		return err
	}

	node.position = position
	node.rotation = rotation.Normalize()
	node.scale = scale
	node.markDirty()
	return nil

}

// SetLocalPosition sets the object's local position (position relative to its parent). If this object has no parent,
// the position is relative to world origin.
func (node *Node) SetLocalPosition(position mgl64.Vec3) error {
	if err := validatePosition(position); err != nil {
		return err
	}
	node.position = position
	node.markDirty()
	return nil
}

// SetLocalRotation sets the object's local rotation. The quaternion is normalized before being stored.
func (node *Node) SetLocalRotation(rotation mgl64.Quat) error {
	if err := validateRotation(rotation); err != nil {
		return err
	}
	node.rotation = rotation.Normalize()
	node.markDirty()
	return nil
}

// SetLocalScale sets the object's local scale. Every component must be finite and greater than zero.
func (node *Node) SetLocalScale(scale mgl64.Vec3) error {
	if err := validateScale(scale); err != nil {
		return err
	}
	node.scale = scale
	node.markDirty()
	return nil
}

// ResetLocalTransform resets the local transform properties (position, scale, and rotation) for the Node.
func (node *Node) ResetLocalTransform() {
	node.position = mgl64.Vec3{}
	node.rotation = mgl64.QuatIdent()
	node.scale = mgl64.Vec3{1, 1, 1}
	node.markDirty()
}

// Move moves a Node in local space by the x, y, and z values provided.
func (node *Node) Move(x, y, z float64) {
	if !isFinite(x, y, z) {
		assert(false, "non-finite move")
		return
	}
	node.position = node.position.Add(mgl64.Vec3{x, y, z})
	node.markDirty()
}

// Rotate rotates a Node on its local orientation around the given axis, by the angle provided in radians.
func (node *Node) Rotate(axis mgl64.Vec3, angle float64) {
	if axis.Len() == 0 || !isFinite(angle) {
		return
	}
	node.rotation = node.rotation.Mul(NewQuaternionAxisAngle(axis, angle)).Normalize()
	node.markDirty()
}

// LookAt rotates the Node so that its -Z axis points at the given world-space target. The Node's and its parent's
// world matrices must be current.
func (node *Node) LookAt(target mgl64.Vec3, up mgl64.Vec3) {

	assert(!node.dirty, "LookAt called on a node with a stale world matrix")

	world := NewLookAtRotation(node.worldMatrix.Col(3).Vec3(), target, up)

	if node.parent != nil {
		_, parentRotation, _ := Decompose(node.parent.worldMatrix)
		world = parentRotation.Inverse().Mul(world)
	}

	node.rotation = world.Normalize()
	node.markDirty()

}

// LocalMatrix returns the Node's cached local matrix (translate × rotate × scale) as of the last propagation pass.
func (node *Node) LocalMatrix() mgl64.Mat4 {
	return node.localMatrix
}

// WorldMatrix returns the Node's cached world matrix as of the last propagation pass. Reading it while the Node is
// dirty returns a stale matrix; debug builds panic instead.
func (node *Node) WorldMatrix() mgl64.Mat4 {
	assert(!node.dirty, "world matrix of "+node.name+" read before propagation")
	return node.worldMatrix
}

// WorldPosition returns the translation component of the Node's world matrix.
func (node *Node) WorldPosition() mgl64.Vec3 {
	return node.WorldMatrix().Col(3).Vec3()
}

// Dirty returns true if the Node's cached matrices are out of date.
func (node *Node) Dirty() bool {
	return node.dirty
}

// Updates returns how many times the Node's matrices have been recomputed.
func (node *Node) Updates() uint64 {
	return node.updates
}

// UpdateWorldMatrix propagates transforms through the Node's subtree. A dirty (or forced) Node recomputes its local
// matrix from its TRS components and its world matrix as parent.world × local (local alone for a root), then forces
// every child to do the same, so parents are always computed before their children.
//
// A clean, unforced Node does no work. If it has dirty descendants it only walks down to reach them.
func (node *Node) UpdateWorldMatrix(force bool) {

	if node.dirty || force {

		node.localMatrix = ComposeTRS(node.position, node.rotation, node.scale)

		if node.parent != nil {
			node.worldMatrix = node.parent.worldMatrix.Mul4(node.localMatrix)
		} else {
			node.worldMatrix = node.localMatrix
		}

		node.dirty = false
		node.childrenDirty = false
		node.updates++

		for _, child := range node.children {
			child.UpdateWorldMatrix(true)
		}

		return

	}

	if node.childrenDirty {
		node.childrenDirty = false
		for _, child := range node.children {
			child.UpdateWorldMatrix(false)
		}
	}

}

// markDirty sets the dirty flag on the Node and its recursive children, and flags every ancestor as having dirty
// descendants.
func (node *Node) markDirty() {

	node.dirtySubtree()

	for p := node.parent; p != nil; p = p.parent {
		p.childrenDirty = true
	}

}

func (node *Node) dirtySubtree() {
	node.dirty = true
	for _, child := range node.children {
		child.dirtySubtree()
	}
}

func validatePosition(position mgl64.Vec3) error {
	if !isFinite(position[0], position[1], position[2]) {
		return errors.Wrapf(ErrDomain, "position %v is not finite", position)
	}
	return nil
}

func validateRotation(rotation mgl64.Quat) error {
	if !validQuaternion(rotation) {
		return errors.Wrapf(ErrDomain, "rotation %v is zero or not finite", rotation)
	}
	return nil
}

func validateScale(scale mgl64.Vec3) error {
	for i, s := range scale {
		if !isFinite(s) || s <= 0 {
			return errors.Wrapf(ErrDomain, "scale component %d is %v; must be finite and greater than zero", i, s)
		}
	}
	return nil
}
