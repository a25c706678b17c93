package provisioning

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cellos/cell/internal/cell"
)

// ErrDeleteAborted is returned when the operator does not confirm a delete
// by typing the exact cell name.
var ErrDeleteAborted = errors.New("delete aborted")

// ErrNegativeCapacity is returned for a scale request below zero.
var ErrNegativeCapacity = errors.New("capacity must not be negative")

// ScaleDownRefusedError is returned when a scale-down of a stateful role was
// not confirmed.
type ScaleDownRefusedError struct {
	Role    cell.Role
	Current int
	Desired int
}

func (e *ScaleDownRefusedError) Error() string {
	return fmt.Sprintf("scale down of %s from %d to %d refused", e.Role, e.Current, e.Desired)
}

// Affirmative reports whether answer is a "y" or "yes" confirmation.
func Affirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
