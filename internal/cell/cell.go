// Package cell defines the identity of a provisioned cell and the closed set
// of node roles a cell is made of.
package cell

import (
	"errors"
	"fmt"
	"regexp"
)

// Prefix is prepended to the cell name to derive the full name used for
// keypairs, bucket prefixes and generated files.
const Prefix = "cell-os"

// MaxNameLength is the exclusive upper bound on the cell name length.
// Load balancer names are limited to 32 characters and the gateway
// load balancers append role suffixes to the cell name.
const MaxNameLength = 22

var (
	// ErrNameTooLong is returned when a cell name is too long to derive load balancer names from.
	ErrNameTooLong = errors.New("cell name too long")
	// ErrNameInvalid is returned for empty names or names that are not valid stack names.
	ErrNameInvalid = errors.New("invalid cell name")
)

var namePattern = regexp.MustCompile(`^[a-zA-Z][-a-zA-Z0-9]*$`)

// Cell identifies one provisioned cluster.
type Cell struct {
	Name string
}

// New validates name and returns the cell it identifies.
func New(name string) (Cell, error) {
	if err := ValidateName(name); err != nil {
		return Cell{}, err
	}
	return Cell{Name: name}, nil
}

// ValidateName checks the cell name invariants.
func ValidateName(name string) error {
	if name == "" || !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q (letters, digits and dashes, starting with a letter)", ErrNameInvalid, name)
	}
	if len(name) >= MaxNameLength {
		return fmt.Errorf("%w: %q has %d characters, must be shorter than %d", ErrNameTooLong, name, len(name), MaxNameLength)
	}
	return nil
}

// FullName returns the prefixed name, e.g. "cell-os--demo1".
func (c Cell) FullName() string {
	return fmt.Sprintf("%s--%s", Prefix, c.Name)
}

// String implements fmt.Stringer.
func (c Cell) String() string {
	return c.Name
}
