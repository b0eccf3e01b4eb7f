package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckSchemaCompatibility checks if a stored artifact's schema version is
// compatible with the schema version of the running library.
// Returns nil if compatible, error with details if not.
//
// Compatibility Rules:
//   - If either version is "main" (development build), compatibility check is skipped
//   - Major versions must match exactly
//   - Minor versions must match exactly
//   - Patch versions can differ (e.g., 1.2.0 is compatible with 1.2.5)
//
// Examples:
//   - Artifact 1.2.0, Runtime 1.2.0 -> OK (exact match)
//   - Artifact 1.2.1, Runtime 1.2.0 -> OK (patch differs)
//   - Artifact 1.3.0, Runtime 1.2.0 -> ERROR (minor differs)
//   - Artifact 2.0.0, Runtime 1.2.0 -> ERROR (major differs)
//   - Artifact main, Runtime 1.2.0 -> OK (dev build, skip check)
func CheckSchemaCompatibility(artifactVersion, runtimeVersion string) error {
	// Strip 'v' prefix if present for consistency
	artifactVersion = strings.TrimPrefix(artifactVersion, "v")
	runtimeVersion = strings.TrimPrefix(runtimeVersion, "v")

	// Skip version check for "main" (development builds)
	if artifactVersion == "main" || runtimeVersion == "main" {
		return nil
	}

	// Parse artifact version
	artifactSemver, err := semver.NewVersion(artifactVersion)
	if err != nil {
		return fmt.Errorf("invalid artifact schema version '%s': %w", artifactVersion, err)
	}

	// Parse runtime version
	runtimeSemver, err := semver.NewVersion(runtimeVersion)
	if err != nil {
		return fmt.Errorf("invalid runtime schema version '%s': %w", runtimeVersion, err)
	}

	// Check major version match
	if artifactSemver.Major() != runtimeSemver.Major() {
		return fmt.Errorf("major version mismatch: artifact was built with %d.x.x but runtime expects %d.x.x",
			artifactSemver.Major(), runtimeSemver.Major())
	}

	// Check minor version match
	if artifactSemver.Minor() != runtimeSemver.Minor() {
		return fmt.Errorf("minor version mismatch: artifact was built with %d.%d.x but runtime expects %d.%d.x",
			artifactSemver.Major(), artifactSemver.Minor(),
			runtimeSemver.Major(), runtimeSemver.Minor())
	}

	// Patch versions can differ, so we're compatible
	return nil
}
