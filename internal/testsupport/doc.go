// Package testsupport holds fixtures shared by package tests: temp-dir
// backed configs, stub binaries and placeholder clips.
package testsupport
