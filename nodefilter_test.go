package facegraph

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func newFilterTree() (root *Node, head *Node, eyes []*Node) {

	root = NewNode("root")
	head = NewBone("Head")
	left := NewBone("LeftEye")
	right := NewBone("RightEye")
	jaw := NewNode("Jaw")

	root.AddChildren(head)
	head.AddChildren(left, right, jaw)

	left.Move(-0.4, 0, 0)
	right.Move(0.4, 0, 0)
	jaw.Move(0, -1, 0)

	jaw.AddDrawable(NewDrawable("Teeth", NewBoxGeometry(1, 1, 1), NewMaterial("teeth")))
	left.Properties().Get("gaze").Set(true)
	right.Properties().Get("gaze").Set(false)

	root.UpdateWorldMatrix(false)

	return root, head, []*Node{left, right}

}

func TestNodeFilterExcludesStart(t *testing.T) {

	root, _, _ := newFilterTree()

	if got := root.Search().Count(); got != 4 {
		t.Fatalf("expected 4 descendants, got %d", got)
	}

	if root.Search().Contains(root) {
		t.Fatal("the starting node shouldn't be part of its own search")
	}

}

func TestNodeFilterChains(t *testing.T) {

	root, head, eyes := newFilterTree()

	bones := root.Search().ByType(NodeTypeBone)
	if bones.Count() != 3 {
		t.Fatalf("expected 3 bones, got %d", bones.Count())
	}

	eyeSearch := bones.ByRegex("Eye$")
	nodes := eyeSearch.Nodes()
	if len(nodes) != 2 || nodes[0] != eyes[0] || nodes[1] != eyes[1] {
		t.Fatal("expected both eyes in hierarchy order, got", nodes)
	}

	// Extending a filter doesn't touch the one it came from
	if bones.Count() != 3 {
		t.Fatal("chaining modified the original filter")
	}

	if got := root.Search().ByName("Jaw").First(); got == nil || got.Name() != "Jaw" {
		t.Fatal("ByName didn't find the jaw")
	}

	if root.Search().ByRegex("(").Count() != 0 {
		t.Fatal("an invalid expression should match nothing")
	}

	if got := root.Search().Not(head).SetMaxDepth(0).Count(); got != 0 {
		t.Fatalf("depth 0 with the only child excluded should be empty, got %d", got)
	}

	if got := root.Search().ByType(NodeTypeBone).StopOnFiltered().Count(); got != 3 {
		t.Fatalf("expected the bones under a bone to be reachable, got %d", got)
	}

	if !root.Search().ByType(NodeTypeCamera).IsEmpty() {
		t.Fatal("there are no cameras in the tree")
	}

}

func TestNodeFilterProperties(t *testing.T) {

	root, _, eyes := newFilterTree()

	if got := root.Search().ByProps("gaze").Count(); got != 2 {
		t.Fatalf("expected 2 nodes with a gaze property, got %d", got)
	}

	if got := root.Search().ByProp("gaze", true).First(); got != eyes[0] {
		t.Fatal("expected the left eye, got", got)
	}

	props := eyes[0].Properties().Clone()
	props.Remove("gaze")
	if !eyes[0].Properties().Has("gaze") {
		t.Fatal("removing from a clone changed the original")
	}

}

func TestNodeFilterSortingAndDrawables(t *testing.T) {

	root, _, eyes := newFilterTree()

	sorted := root.Search().ByRegex("Eye").SortByAxis(0).SortReverse().Nodes()
	if sorted[0] != eyes[1] {
		t.Fatal("expected the right eye first when sorting by descending X")
	}

	nearest := root.Search().SortByDistance(mgl64.Vec3{0, -2, 0}).First()
	if nearest.Name() != "Jaw" {
		t.Fatal("expected the jaw to be nearest, got", nearest.Name())
	}

	drawables := root.Search().WithDrawables().Drawables()
	if len(drawables) != 1 || drawables[0].Name != "Teeth" {
		t.Fatal("expected the teeth drawable, got", drawables)
	}

}
