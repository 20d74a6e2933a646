//go:build debug

package facegraph

// Debug is true when the module is built with the debug tag. Precondition checks panic in this mode.
const Debug = true

func assert(cond bool, msg string) {
	if !cond {
		panic("facegraph: " + msg)
	}
}
