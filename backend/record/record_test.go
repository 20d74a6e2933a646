package record

import (
	"errors"
	"testing"

	"github.com/openhuman/facegraph"
)

func TestRecordsFramesInOrder(t *testing.T) {

	scene := facegraph.NewScene("Scene")
	camera := facegraph.NewCamera("Camera")
	camera.Move(0, 0, 5)
	scene.Add(camera.Node)

	head := facegraph.NewMesh("Head", facegraph.NewBoxGeometry(1, 1, 1), facegraph.NewMaterial("skin"))
	eye := facegraph.NewMesh("Eye", facegraph.NewSphereGeometry(0.1, 8, 6), facegraph.NewMaterial("eye"))
	head.Node().AddChildren(eye.Node())
	scene.Add(head.Node())

	backend := New(2)
	renderer, err := facegraph.NewRenderer(backend)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err := renderer.Render(scene, camera); err != nil {
			t.Fatal(err)
		}
	}

	if n := len(backend.Frames()); n != 2 {
		t.Fatalf("expected 2 retained frames, got %d", n)
	}

	last := backend.Last()
	if !last.Ended {
		t.Fatal("frame not ended")
	}

	names := last.Names()
	if len(names) != 2 || names[0] != "Head" || names[1] != "Eye" {
		t.Fatalf("unexpected draw order %v", names)
	}

	if last.Calls[1].Path != "Head/Eye" {
		t.Fatalf("unexpected path %q", last.Calls[1].Path)
	}

	backend.Reset()
	if backend.Last() != nil {
		t.Fatal("Reset kept frames")
	}

}

func TestFailOn(t *testing.T) {

	scene := facegraph.NewScene("Scene")
	camera := facegraph.NewCamera("Camera")
	scene.Add(facegraph.NewMesh("Broken", facegraph.NewPlaneGeometry(1, 1), facegraph.NewMaterial("m")).Node())

	failure := errors.New("device lost")
	backend := New(0)
	backend.FailOn = "Broken"
	backend.FailErr = failure

	renderer, _ := facegraph.NewRenderer(backend)

	if err := renderer.Render(scene, camera); !errors.Is(err, failure) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}

}
