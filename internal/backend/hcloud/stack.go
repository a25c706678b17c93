package hcloud

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/cellos/cell/internal/backend"
	"github.com/cellos/cell/internal/cell"
	platformhcloud "github.com/cellos/cell/internal/platform/hcloud"
	"github.com/cellos/cell/internal/util/labels"
)

// CreateStack creates the configured number of servers for every role.
func (b *Backend) CreateStack(ctx context.Context) error {
	stack := b.cfg.Cell.StackName()
	b.logf("CREATE %s", stack)
	userData, err := b.userData()
	if err != nil {
		return &backend.StackActionError{Stack: stack, Action: "create", Err: err}
	}
	var created []string
	for _, role := range cell.AllRoles() {
		for i := 1; i <= b.roleCount(role); i++ {
			if err := b.createServer(ctx, role, i, userData); err != nil {
				if len(created) > 0 {
					b.logf("Servers already created for %s: %s", stack, strings.Join(created, ", "))
					err = fmt.Errorf("%w (servers left running: %s; run `cell delete %s` to remove them)",
						err, strings.Join(created, ", "), b.cfg.Cell.Name)
				}
				return &backend.StackActionError{Stack: stack, Action: "create", Err: err}
			}
			created = append(created, b.cfg.Cell.ServerName(role, i))
		}
	}
	return nil
}

// UpdateStack relabels every server with the current version and
// reconciles each role to its configured count.
func (b *Backend) UpdateStack(ctx context.Context) error {
	stack := b.cfg.Cell.StackName()
	b.logf("UPDATE %s", stack)

	servers, err := b.cellServers(ctx, "")
	if err != nil {
		return &backend.StackActionError{Stack: stack, Action: "update", Err: err}
	}
	for _, server := range servers {
		if server.Labels[labels.KeyVersion] == b.cfg.Version {
			continue
		}
		updated := make(map[string]string, len(server.Labels)+1)
		for k, v := range server.Labels {
			updated[k] = v
		}
		updated[labels.KeyVersion] = b.cfg.Version
		if err := b.client.SetServerLabels(ctx, server, updated); err != nil {
			return &backend.StackActionError{Stack: stack, Action: "update", Err: err}
		}
	}

	for _, role := range cell.AllRoles() {
		if err := b.reconcile(ctx, role, b.roleCount(role)); err != nil {
			return &backend.StackActionError{Stack: stack, Action: "update", Err: err}
		}
	}
	return nil
}

// DeleteStack deletes every server of the cell. All deletions are
// attempted; the failures are joined.
func (b *Backend) DeleteStack(ctx context.Context) error {
	stack := b.cfg.Cell.StackName()
	b.logf("Deleting stack %s", stack)

	servers, err := b.cellServers(ctx, "")
	if err != nil {
		return &backend.StackActionError{Stack: stack, Action: "delete", Err: err}
	}
	var errs []error
	for _, server := range servers {
		b.logf("DELETE server %s", server.Name)
		if err := b.client.DeleteServer(ctx, server.Name); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return &backend.StackActionError{Stack: stack, Action: "delete", Err: err}
	}
	return nil
}

// Exists reports whether any server carries the cell label.
func (b *Backend) Exists(ctx context.Context) (bool, error) {
	servers, err := b.cellServers(ctx, "")
	if err != nil {
		return false, err
	}
	return len(servers) > 0, nil
}

// RoleCapacity returns the label selector of the role's servers and how
// many of them exist.
func (b *Backend) RoleCapacity(ctx context.Context, role cell.Role) (string, int, error) {
	servers, err := b.cellServers(ctx, role)
	if err != nil {
		return "", 0, err
	}
	return labels.SelectorForCell(b.cfg.Cell.Name, string(role)), len(servers), nil
}

// Scale creates or deletes servers of role until capacity of them exist.
func (b *Backend) Scale(ctx context.Context, role cell.Role, group string, capacity int) error {
	b.logf("SCALE %s (%s) to %d", role, group, capacity)
	return b.reconcile(ctx, role, capacity)
}

// reconcile adds servers after the highest index, or removes servers from
// the highest index down.
func (b *Backend) reconcile(ctx context.Context, role cell.Role, capacity int) error {
	servers, err := b.cellServers(ctx, role)
	if err != nil {
		return err
	}

	switch {
	case len(servers) < capacity:
		userData, err := b.userData()
		if err != nil {
			return err
		}
		next := 1
		if len(servers) > 0 {
			next = serverIndex(servers[len(servers)-1]) + 1
		}
		for i := len(servers); i < capacity; i++ {
			if err := b.createServer(ctx, role, next, userData); err != nil {
				return err
			}
			next++
		}
	case len(servers) > capacity:
		for i := len(servers) - 1; i >= capacity; i-- {
			b.logf("DELETE server %s", servers[i].Name)
			if err := b.client.DeleteServer(ctx, servers[i].Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Backend) createServer(ctx context.Context, role cell.Role, index int, userData string) error {
	name := b.cfg.Cell.ServerName(role, index)
	b.logf("CREATE server %s", name)
	_, err := b.client.CreateServer(ctx, platformhcloud.ServerCreateOpts{
		Name:       name,
		Image:      b.cfg.Hcloud.Image,
		ServerType: b.cfg.Hcloud.ServerType,
		Location:   b.cfg.Hcloud.Location,
		SSHKeys:    []string{b.cfg.Cell.KeyPairName()},
		Labels:     labels.NewLabelBuilder(b.cfg.Cell.Name).WithRole(string(role)).WithVersion(b.cfg.Version).Build(),
		UserData:   userData,
	})
	return err
}

// cellServers lists the servers of the cell (of role, when set) ordered by index.
func (b *Backend) cellServers(ctx context.Context, role cell.Role) ([]*hcloud.Server, error) {
	selector := map[string]string{labels.KeyCell: b.cfg.Cell.Name}
	if role != "" {
		selector[labels.KeyRole] = string(role)
	}
	servers, err := b.client.GetServersByLabel(ctx, selector)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(servers, func(i, j int) bool {
		ri, rj := servers[i].Labels[labels.KeyRole], servers[j].Labels[labels.KeyRole]
		if ri != rj {
			return ri < rj
		}
		return serverIndex(servers[i]) < serverIndex(servers[j])
	})
	return servers, nil
}

func (b *Backend) roleCount(role cell.Role) int {
	if n, ok := b.cfg.Hcloud.Counts[role]; ok {
		return n
	}
	return 1
}

func (b *Backend) userData() (string, error) {
	data, err := os.ReadFile(b.cfg.Asset(userDataAsset))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read user-data: %w", err)
	}
	return string(data), nil
}

// serverIndex parses the trailing index of <cell>-<role>-<index>.
func serverIndex(server *hcloud.Server) int {
	i := strings.LastIndex(server.Name, "-")
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(server.Name[i+1:])
	if err != nil {
		return 0
	}
	return n
}
