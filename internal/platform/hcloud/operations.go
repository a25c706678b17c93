package hcloud

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// DeleteOperation encapsulates deletion logic for any hcloud resource looked
// up by name.
//
//	func (c *RealClient) DeleteSSHKey(ctx context.Context, name string) error {
//	    return (&DeleteOperation[*hcloud.SSHKey]{
//	        Name:         name,
//	        ResourceType: "ssh key",
//	        Get:          c.client.SSHKey.Get,
//	        Delete:       c.client.SSHKey.Delete,
//	    }).Execute(ctx, c)
//	}
type DeleteOperation[T any] struct {
	Name         string
	ResourceType string

	// Get retrieves the resource by name
	Get func(ctx context.Context, name string) (T, *hcloud.Response, error)

	// Delete removes the resource
	Delete func(ctx context.Context, resource T) (*hcloud.Response, error)
}

// Execute performs the delete under the client's delete timeout. It is
// idempotent: a resource that does not exist, or vanishes between lookup
// and delete, counts as deleted.
func (op *DeleteOperation[T]) Execute(ctx context.Context, client *RealClient) error {
	ctx, cancel := context.WithTimeout(ctx, client.timeouts.Delete)
	defer cancel()

	resource, _, err := op.Get(ctx, op.Name)
	if err != nil {
		return fmt.Errorf("failed to get %s %s: %w", op.ResourceType, op.Name, err)
	}
	if isNil(resource) {
		return nil
	}

	if _, err := op.Delete(ctx, resource); err != nil {
		if IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to delete %s %s: %w", op.ResourceType, op.Name, err)
	}
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}
