//go:build !debug

package facegraph

// Debug is true when the module is built with the debug tag. Precondition checks panic in this mode.
const Debug = false

func assert(cond bool, msg string) {}
