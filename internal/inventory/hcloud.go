package inventory

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/cellos/cell/internal/cell"
	"github.com/cellos/cell/internal/util/labels"
)

// ServerLister is implemented by *hcloud.ServerClient.
type ServerLister interface {
	AllWithOpts(ctx context.Context, opts hcloud.ServerListOpts) ([]*hcloud.Server, error)
}

// HcloudSource lists servers labeled with the cell (and role).
type HcloudSource struct {
	Servers ServerLister
}

// NewHcloudDirectory returns a Directory backed by Hetzner Cloud servers.
func NewHcloudDirectory(servers ServerLister) *SourceDirectory {
	return &SourceDirectory{Source: &HcloudSource{Servers: servers}}
}

// Records implements Source.
func (s *HcloudSource) Records(ctx context.Context, c cell.Cell, role cell.Role) ([]Record, error) {
	servers, err := s.Servers.AllWithOpts(ctx, hcloud.ServerListOpts{
		ListOpts: hcloud.ListOpts{LabelSelector: labels.SelectorForCell(c.Name, string(role))},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list servers of cell %s: %w", c.Name, err)
	}

	records := make([]Record, 0, len(servers))
	for _, server := range servers {
		rec := hcloudRecord(server)
		if !IsLive(rec.State) {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func hcloudRecord(server *hcloud.Server) Record {
	rec := Record{
		InstanceID: strconv.FormatInt(server.ID, 10),
		State:      string(server.Status),
		Role:       cell.Role(server.Labels[labels.KeyRole]),
	}
	if ip := server.PublicNet.IPv4.IP; ip != nil {
		rec.PublicIP = ip.String()
	}
	// Servers without a private network are addressed by their public IP.
	rec.PrivateIP = rec.PublicIP
	if len(server.PrivateNet) > 0 && server.PrivateNet[0].IP != nil {
		rec.PrivateIP = server.PrivateNet[0].IP.String()
	}
	if server.Image != nil {
		rec.ImageID = server.Image.Name
	}
	return rec
}
