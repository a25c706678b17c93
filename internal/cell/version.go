package cell

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// bastionConstraint matches the cell-os versions that provision a
// dedicated bastion role. Older cells are reached through a stateless body node.
var bastionConstraint = mustConstraint(">= 1.2.1")

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}

// HasBastion reports whether a cell created with version has a bastion
// node. Pre-release and build suffixes are ignored, so 1.2.1-SNAPSHOT
// counts as 1.2.1.
func HasBastion(version string) (bool, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false, fmt.Errorf("invalid cell-os version %q: %w", version, err)
	}
	core, err := v.SetPrerelease("")
	if err != nil {
		return false, fmt.Errorf("invalid cell-os version %q: %w", version, err)
	}
	core, err = core.SetMetadata("")
	if err != nil {
		return false, fmt.Errorf("invalid cell-os version %q: %w", version, err)
	}
	return bastionConstraint.Check(&core), nil
}

// AccessRole is the role whose public address serves as the SSH entry point.
func AccessRole(version string) (Role, error) {
	ok, err := HasBastion(version)
	if err != nil {
		return "", err
	}
	if ok {
		return RoleBastion, nil
	}
	return RoleStatelessBody, nil
}
