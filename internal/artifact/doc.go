// Package artifact tracks the named files a job places in the engine
// namespace.
//
// The store records which role each artifact plays (input, intermediate or
// output), refuses duplicate names, resolves bytes on demand and caches the
// final output so repeated downloads do not hit the engine again. Releasing
// an artifact deletes it from the namespace and forgets it.
package artifact
