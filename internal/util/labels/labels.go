// Package labels provides the tag and label keys shared by every cell
// resource, on AWS as tags and on Hetzner Cloud as labels.
//
// Instance queries, capacity lookups and teardown all select resources by
// these keys, so they must stay stable across versions.
package labels

import (
	"sort"
	"strings"
)

// Standard keys.
const (
	// KeyCell identifies which cell an instance or group belongs to
	KeyCell = "cell"

	// KeyRole identifies the role of an instance or group
	KeyRole = "role"

	// KeyName is the stack tag holding the cell name
	KeyName = "name"

	// KeyVersion is the stack tag holding the cell-os version
	KeyVersion = "version"

	// KeyManagedBy identifies the management system
	KeyManagedBy = "managed-by"
)

// ManagedByCell is the KeyManagedBy value of resources created by this tool.
const ManagedByCell = "cell"

// LabelBuilder provides a fluent interface for building resource labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a new label builder with the cell name pre-set.
func NewLabelBuilder(cellName string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyCell:      cellName,
			KeyManagedBy: ManagedByCell,
		},
	}
}

// WithRole adds a role label.
func (lb *LabelBuilder) WithRole(role string) *LabelBuilder {
	lb.labels[KeyRole] = role
	return lb
}

// WithVersion adds the cell-os version label.
func (lb *LabelBuilder) WithVersion(version string) *LabelBuilder {
	lb.labels[KeyVersion] = version
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}

// Selector renders labels as a comma separated key=value selector with
// keys in sorted order.
func Selector(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+labels[k])
	}
	return strings.Join(parts, ",")
}

// SelectorForCell returns a selector for all resources of a cell,
// optionally narrowed to one role.
func SelectorForCell(cellName, role string) string {
	sel := map[string]string{KeyCell: cellName}
	if role != "" {
		sel[KeyRole] = role
	}
	return Selector(sel)
}
