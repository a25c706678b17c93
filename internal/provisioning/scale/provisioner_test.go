package scale

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cellos/cell/internal/backend"
	"github.com/cellos/cell/internal/cell"
	"github.com/cellos/cell/internal/config"
	"github.com/cellos/cell/internal/provisioning"
)

type answerPrompter struct {
	answer string
	asked  int
}

func (p *answerPrompter) Prompt(context.Context, string) (string, error) {
	p.asked++
	return p.answer, nil
}

func TestProvision(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		role       cell.Role
		current    int
		desired    int
		answer     string
		wantScaled bool
		wantAsked  int
		wantRefuse bool
	}{
		{name: "stateful scale down declined", role: cell.RoleNucleus, current: 5, desired: 3, answer: "n", wantAsked: 1, wantRefuse: true},
		{name: "stateful scale down empty answer", role: cell.RoleStatefulBody, current: 5, desired: 3, wantAsked: 1, wantRefuse: true},
		{name: "stateful scale down confirmed", role: cell.RoleNucleus, current: 5, desired: 3, answer: "yes", wantAsked: 1, wantScaled: true},
		{name: "stateful scale up", role: cell.RoleNucleus, current: 3, desired: 5, wantScaled: true},
		{name: "stateless scale down", role: cell.RoleStatelessBody, current: 5, desired: 0, wantScaled: true},
		{name: "stateful same size", role: cell.RoleStatefulBody, current: 3, desired: 3, wantScaled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var scaled []int
			mock := &backend.MockBackend{
				RoleCapacityFunc: func(_ context.Context, role cell.Role) (string, int, error) {
					return string(role) + "-asg", tt.current, nil
				},
				ScaleFunc: func(_ context.Context, role cell.Role, group string, capacity int) error {
					assert.Equal(t, tt.role, role)
					assert.Equal(t, string(tt.role)+"-asg", group)
					scaled = append(scaled, capacity)
					return nil
				},
			}
			prompter := &answerPrompter{answer: tt.answer}
			c, err := cell.New("demo1")
			require.NoError(t, err)
			ctx := provisioning.NewContext(context.Background(), &config.Config{Cell: c}, mock, prompter)
			ctx.Observer = provisioning.NewRecordingObserver()

			err = NewProvisioner(tt.role, tt.desired).Provision(ctx)

			assert.Equal(t, tt.wantAsked, prompter.asked)
			if tt.wantRefuse {
				var refused *provisioning.ScaleDownRefusedError
				require.ErrorAs(t, err, &refused)
				assert.Equal(t, tt.current, refused.Current)
				assert.Equal(t, tt.desired, refused.Desired)
				assert.Empty(t, scaled, "no scaling call after refusal")
				return
			}
			require.NoError(t, err)
			if tt.wantScaled {
				assert.Equal(t, []int{tt.desired}, scaled)
			}
		})
	}
}

func TestProvision_Preconditions(t *testing.T) {
	t.Parallel()

	c, err := cell.New("demo1")
	require.NoError(t, err)

	t.Run("negative capacity", func(t *testing.T) {
		t.Parallel()
		mock := &backend.MockBackend{}
		ctx := provisioning.NewContext(context.Background(), &config.Config{Cell: c}, mock, nil)
		err := NewProvisioner(cell.RoleNucleus, -1).Provision(ctx)
		assert.ErrorIs(t, err, provisioning.ErrNegativeCapacity)
		assert.Empty(t, mock.Calls)
	})

	t.Run("missing cell", func(t *testing.T) {
		t.Parallel()
		mock := &backend.MockBackend{ExistsFunc: func(context.Context) (bool, error) { return false, nil }}
		ctx := provisioning.NewContext(context.Background(), &config.Config{Cell: c}, mock, nil)
		err := NewProvisioner(cell.RoleNucleus, 3).Provision(ctx)
		assert.ErrorIs(t, err, backend.ErrCellNotFound)
		assert.Equal(t, []string{"Exists"}, mock.Calls)
	})

	t.Run("no prompter refuses stateful scale down", func(t *testing.T) {
		t.Parallel()
		mock := &backend.MockBackend{
			RoleCapacityFunc: func(context.Context, cell.Role) (string, int, error) { return "g", 5, nil },
		}
		ctx := provisioning.NewContext(context.Background(), &config.Config{Cell: c}, mock, nil)
		ctx.Observer = provisioning.NewRecordingObserver()
		err := NewProvisioner(cell.RoleNucleus, 3).Provision(ctx)
		var refused *provisioning.ScaleDownRefusedError
		assert.ErrorAs(t, err, &refused)
		assert.NotContains(t, mock.Calls, "Scale")
	})
}
