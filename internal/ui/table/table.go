// Package table renders command output as aligned text tables.
package table

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/cellos/cell/internal/backend"
	"github.com/cellos/cell/internal/inventory"
)

// Render writes a titled table. A nil header renders rows only.
func Render(w io.Writer, title string, header []string, rows [][]string) {
	if title != "" {
		fmt.Fprintf(w, "%s\n", title)
	}
	t := tablewriter.NewWriter(w)
	if header != nil {
		t.SetHeader(header)
	}
	t.SetAutoWrapText(false)
	t.SetAutoFormatHeaders(false)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.AppendBulk(rows)
	t.Render()
}

// Stacks renders the cell stacks visible to the credentials.
func Stacks(w io.Writer, stacks []backend.StackSummary, now time.Time) {
	rows := make([][]string, 0, len(stacks))
	for _, s := range stacks {
		rows = append(rows, []string{s.Name, s.Region, s.Status, s.Version, humanize.RelTime(s.Created, now, "ago", "from now")})
	}
	Render(w, "", []string{"Name", "Region", "Status", "Version", "Created"}, rows)
}

// Events renders infrastructure events.
func Events(w io.Writer, events []backend.InfraEvent) {
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{e.Timestamp.UTC().Format(time.RFC3339), e.ResourceID, e.Status})
	}
	Render(w, "Stack Events", []string{"Timestamp", "Resource", "Status"}, rows)
}

// Cell renders the description of one cell.
func Cell(w io.Writer, summary *backend.CellSummary) {
	header := make([]string, 0, len(inventory.DefaultFields))
	for _, f := range inventory.DefaultFields {
		header = append(header, string(f))
	}
	for _, role := range summary.Roles {
		Render(w, string(role), header, summary.Instances[role])
	}

	if len(summary.LoadBalancers) > 0 {
		rows := make([][]string, 0, len(summary.LoadBalancers))
		for _, lb := range summary.LoadBalancers {
			rows = append(rows, []string{lb.Name, lb.DNSName})
		}
		Render(w, "Load balancers", nil, rows)
	}
	if summary.StatusPage != "" {
		Render(w, "Status page", nil, [][]string{{summary.StatusPage}})
	}
	Render(w, "Gateways", nil, namedRows(summary.Gateways))
	Render(w, "Local files", nil, namedRows(summary.LocalFiles))
}

func namedRows(values []backend.NamedValue) [][]string {
	rows := make([][]string, 0, len(values))
	for _, v := range values {
		rows = append(rows, []string{v.Name, v.Value})
	}
	return rows
}
