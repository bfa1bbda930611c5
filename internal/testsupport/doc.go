// Package testsupport builds throwaway configs, sign datasets and stub
// binaries for package tests.
package testsupport
