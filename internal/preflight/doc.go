// Package preflight checks the filesystem paths a sprite run depends on.
//
// Source folders must be readable. Target folders, and the cache directory
// when the cache is enabled, must be creatable: the nearest existing ancestor
// has to be writable. The CLI "config validate" command prints the results.
package preflight
