// Package shape describes panel outlines as ordered drawing instructions
// and builds them into closed 2D paths. A Shape starts implicitly at the
// origin and is closed back to it.
package shape
