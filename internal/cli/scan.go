package cli

import (
	"fmt"

	"github.com/kitforge-dev/kitforge/internal/paths"
	"github.com/kitforge-dev/kitforge/internal/registry"
)

// scanSources discovers all components under the configured source root.
// Warnings from the scan are logged at debug level so normal output stays
// quiet about unrelated files in the scanned directories.
func scanSources(forceRefresh bool) (*registry.Registry, error) {
	sourceRoot, err := paths.SourceRoot()
	if err != nil {
		return nil, err
	}

	scanner := registry.NewScanner(scanCache)
	reg, err := scanner.Scan(paths.ScanRoots(sourceRoot), registry.Options{
		ForceRefresh: forceRefresh,
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", sourceRoot, err)
	}

	logger.Debug("scan complete",
		"components", len(reg.Components), "warnings", len(reg.Warnings), "cached", reg.CacheValid)
	for _, w := range reg.Warnings {
		logger.Debug(w)
	}

	return reg, nil
}
