// Package facegraph is a retained-mode scene graph with hierarchical transform propagation, skeletal skinning, a
// perspective camera and a render dispatcher that turns a Scene and a Camera into an ordered list of draw calls
// against an abstract Backend.
//
// A frame runs in a fixed order: callers mutate Node transforms and Material parameters, then Renderer.Render
// propagates world matrices top-down, recomputes bone matrices for every registered Skeleton, walks the graph
// depth-first and submits one DrawCall per ready Drawable. Everything happens on one goroutine; asynchronous loads
// hand their results back between frames (see the loader package).
//
// Precondition checks (reading a stale world matrix, computing bone matrices for an unbound skeleton) panic when
// built with the debug tag and are skipped otherwise.
package facegraph
