// Package inventory answers "which instances of this cell (and role) are
// alive, and what are their addresses" against the provider APIs.
//
// Results are projected onto an ordered list of fields so callers can ask
// for a single column (e.g. private IPs of the nucleus) or a full table.
// An empty result is never an error: a cell that is still booting simply
// has fewer rows than expected.
package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/cellos/cell/internal/cell"
)

// Field is one projectable instance attribute.
type Field string

// Projectable fields.
const (
	FieldPublicIP   Field = "public-ip"
	FieldPrivateIP  Field = "private-ip"
	FieldInstanceID Field = "instance-id"
	FieldImageID    Field = "image-id"
	FieldState      Field = "state"
)

// DefaultFields is the column set used by list.
var DefaultFields = []Field{FieldPublicIP, FieldPrivateIP, FieldInstanceID, FieldImageID, FieldState}

// Record is a read-only view of one instance.
type Record struct {
	PublicIP   string
	PrivateIP  string
	InstanceID string
	ImageID    string
	State      string
	Role       cell.Role
}

// Value returns the value of f.
func (r Record) Value(f Field) (string, error) {
	switch f {
	case FieldPublicIP:
		return r.PublicIP, nil
	case FieldPrivateIP:
		return r.PrivateIP, nil
	case FieldInstanceID:
		return r.InstanceID, nil
	case FieldImageID:
		return r.ImageID, nil
	case FieldState:
		return r.State, nil
	default:
		return "", fmt.Errorf("unknown instance field %q", f)
	}
}

// Directory lists the live instances of a cell. An empty role means every role.
type Directory interface {
	List(ctx context.Context, c cell.Cell, role cell.Role, fields []Field) ([][]string, error)
}

// Source fetches the raw records a Directory projects.
type Source interface {
	Records(ctx context.Context, c cell.Cell, role cell.Role) ([]Record, error)
}

// SourceDirectory projects the records of a Source.
type SourceDirectory struct {
	Source Source
}

// List implements Directory.
func (d *SourceDirectory) List(ctx context.Context, c cell.Cell, role cell.Role, fields []Field) ([][]string, error) {
	records, err := d.Source.Records(ctx, c, role)
	if err != nil {
		return nil, err
	}
	return Project(records, fields)
}

// Project maps records to rows holding the requested fields in order.
func Project(records []Record, fields []Field) ([][]string, error) {
	if len(fields) == 0 {
		fields = DefaultFields
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, 0, len(fields))
		for _, f := range fields {
			v, err := rec.Value(f)
			if err != nil {
				return nil, err
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Flatten returns every non-empty value of rows in row-major order.
func Flatten(rows [][]string) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		for _, v := range row {
			if v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// IsLive reports whether a provider state is one of the transitional or
// running states ("pending", "running", "stopping", ...).
func IsLive(state string) bool {
	return strings.HasSuffix(state, "ing")
}

// Column lists a single field of the live instances of role.
func Column(ctx context.Context, d Directory, c cell.Cell, role cell.Role, f Field) ([]string, error) {
	rows, err := d.List(ctx, c, role, []Field{f})
	if err != nil {
		return nil, err
	}
	return Flatten(rows), nil
}
