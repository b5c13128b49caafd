package fixtures

import (
	"path/filepath"
	"runtime"
)

// fixturesDir returns the absolute path to the fixtures directory.
func fixturesDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Dir(file)
}

// CatalogPath is a three-asset portfolio catalog (art-001, art-002, gen-001).
func CatalogPath() string {
	return filepath.Join(fixturesDir(), "catalog.json")
}

// ChainsPath is a two-chain file: devnet (gas 1, ×1/×2/×4) and cheapnet
// (gas 0.01, no multipliers).
func ChainsPath() string {
	return filepath.Join(fixturesDir(), "chains.yaml")
}
