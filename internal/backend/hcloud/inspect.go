package hcloud

import (
	"context"
	"fmt"
	"sort"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/cellos/cell/internal/backend"
	"github.com/cellos/cell/internal/cell"
	"github.com/cellos/cell/internal/inventory"
	"github.com/cellos/cell/internal/util/labels"
)

// DefaultInfraLogItems is the event count shown by the infrastructure log.
const DefaultInfraLogItems = 30

// Instances implements backend.Inspector.
func (b *Backend) Instances(ctx context.Context, role cell.Role, fields []inventory.Field) ([][]string, error) {
	return b.dir.List(ctx, b.cfg.Cell, role, fields)
}

// InfraLog reports one event per server, newest server first.
func (b *Backend) InfraLog(ctx context.Context, maxItems int) ([]backend.InfraEvent, error) {
	if maxItems <= 0 {
		maxItems = DefaultInfraLogItems
	}
	servers, err := b.cellServers(ctx, "")
	if err != nil {
		return nil, err
	}
	sort.SliceStable(servers, func(i, j int) bool { return servers[i].Created.After(servers[j].Created) })

	events := make([]backend.InfraEvent, 0, len(servers))
	for _, server := range servers {
		if len(events) == maxItems {
			break
		}
		events = append(events, backend.InfraEvent{
			Timestamp:  server.Created,
			ResourceID: server.Name,
			Status:     string(server.Status),
		})
	}
	return events, nil
}

// ListAll groups every cell-managed server by its cell label.
func (b *Backend) ListAll(ctx context.Context) ([]backend.StackSummary, error) {
	servers, err := b.client.GetServersByLabel(ctx, map[string]string{labels.KeyManagedBy: labels.ManagedByCell})
	if err != nil {
		return nil, err
	}

	byCell := make(map[string]*backend.StackSummary)
	var names []string
	for _, server := range servers {
		name := server.Labels[labels.KeyCell]
		if name == "" {
			continue
		}
		summary, ok := byCell[name]
		if !ok {
			summary = &backend.StackSummary{
				Name:    name,
				Region:  serverLocation(server),
				Status:  string(hcloud.ServerStatusRunning),
				Version: server.Labels[labels.KeyVersion],
				Created: server.Created,
			}
			byCell[name] = summary
			names = append(names, name)
		}
		// A cell is only as ready as its least ready server.
		if server.Status != hcloud.ServerStatusRunning {
			summary.Status = string(server.Status)
		}
		if server.Created.Before(summary.Created) {
			summary.Created = server.Created
		}
	}

	sort.Strings(names)
	stacks := make([]backend.StackSummary, 0, len(names))
	for _, name := range names {
		stacks = append(stacks, *byCell[name])
	}
	return stacks, nil
}

// ListOne describes the current cell.
func (b *Backend) ListOne(ctx context.Context) (*backend.CellSummary, error) {
	summary := &backend.CellSummary{
		Roles:      cell.Roles(),
		Instances:  make(map[cell.Role][][]string),
		StatusPage: b.StatusPage(),
	}
	for _, role := range summary.Roles {
		rows, err := b.Instances(ctx, role, inventory.DefaultFields)
		if err != nil {
			return nil, err
		}
		summary.Instances[role] = rows
	}
	for _, svc := range backend.GatewayServices {
		summary.Gateways = append(summary.Gateways, backend.NamedValue{Name: svc, Value: b.Gateway(svc)})
	}
	summary.LocalFiles = []backend.NamedValue{
		{Name: "SSH key", Value: b.cfg.KeyFile()},
		{Name: "SSH config", Value: b.cfg.Tmp("ssh_config")},
		{Name: "YAML config", Value: b.cfg.Tmp("config.yaml")},
		{Name: "DCOS config", Value: b.cfg.Tmp("dcos.toml")},
		{Name: "DCOS cache", Value: b.cfg.Tmp("dcos_tmp")},
	}
	return summary, nil
}

// Version returns the version label of the cell's servers.
func (b *Backend) Version(ctx context.Context) (string, error) {
	servers, err := b.cellServers(ctx, "")
	if err != nil {
		return "", err
	}
	for _, server := range servers {
		if v := server.Labels[labels.KeyVersion]; v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("no versioned server found for cell %s", b.cfg.Cell.Name)
}

// Bastion returns the public IP of the SSH entry node.
func (b *Backend) Bastion(ctx context.Context) (string, error) {
	version, err := b.Version(ctx)
	if err != nil {
		return "", err
	}
	role, err := cell.AccessRole(version)
	if err != nil {
		return "", err
	}
	return b.first(ctx, role, inventory.FieldPublicIP)
}

// Proxy returns the private IP of the first stateless body server.
func (b *Backend) Proxy(ctx context.Context) (string, error) {
	return b.first(ctx, cell.RoleStatelessBody, inventory.FieldPrivateIP)
}

func (b *Backend) first(ctx context.Context, role cell.Role, f inventory.Field) (string, error) {
	values, err := inventory.Column(ctx, b.dir, b.cfg.Cell, role, f)
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		return "", nil
	}
	return values[0], nil
}

func serverLocation(server *hcloud.Server) string {
	if server.Datacenter != nil && server.Datacenter.Location != nil {
		return server.Datacenter.Location.Name
	}
	if server.Location != nil {
		return server.Location.Name
	}
	return ""
}
