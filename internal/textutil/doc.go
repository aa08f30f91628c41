// Package textutil cleans user-supplied names before they reach the engine
// workspace.
package textutil
