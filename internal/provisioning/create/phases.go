package create

import (
	"fmt"

	"github.com/cellos/cell/internal/provisioning"
)

const (
	phaseBucket  = "bucket"
	phaseKeyPair = "keypair"
	phaseSeed    = "seed"
	phaseStack   = "stack"
)

// bucketPhase creates the cell bucket unless the operator supplied one.
type bucketPhase struct {
	created bool
}

func (p *bucketPhase) Name() string { return phaseBucket }

func (p *bucketPhase) Provision(ctx *provisioning.Context) error {
	b := ctx.Backend
	if b.ExternalBucket() {
		provisioning.LogResourceExists(ctx.Observer, phaseBucket, "bucket", b.BucketName())
	} else {
		provisioning.LogResourceCreating(ctx.Observer, phaseBucket, "bucket", b.BucketName())
	}

	created, err := b.CreateBucket(ctx)
	if err != nil {
		return err
	}
	p.created = created
	if created {
		provisioning.LogResourceCreated(ctx.Observer, phaseBucket, "bucket", b.BucketName())
	}
	return nil
}

func (p *bucketPhase) Owned() bool { return p.created }

// Compensate deletes the bucket. Failures are logged only.
func (p *bucketPhase) Compensate(ctx *provisioning.Context) error {
	name := ctx.Backend.BucketName()
	provisioning.LogResourceDeleting(ctx.Observer, phaseBucket, "bucket", name)
	if err := ctx.Backend.DeleteBucket(ctx); err != nil {
		provisioning.LogResourceFailed(ctx.Observer, phaseBucket, "bucket", name, err)
		return nil
	}
	provisioning.LogResourceDeleted(ctx.Observer, phaseBucket, "bucket", name)
	return nil
}

// keyPairPhase creates the local work directory and the node keypair.
type keyPairPhase struct {
	created bool
}

func (p *keyPairPhase) Name() string { return phaseKeyPair }

func (p *keyPairPhase) Provision(ctx *provisioning.Context) error {
	if err := provisioning.EnsureTmpDir(ctx); err != nil {
		return err
	}

	name := ctx.Config.Cell.KeyPairName()
	provisioning.LogResourceCreating(ctx.Observer, phaseKeyPair, "keypair", name)
	if err := ctx.Backend.CreateKeyPair(ctx); err != nil {
		return err
	}
	p.created = true
	ctx.Observer.Printf("[%s] private key written to %s", phaseKeyPair, ctx.Config.KeyFile())
	provisioning.LogResourceCreated(ctx.Observer, phaseKeyPair, "keypair", name)
	return nil
}

func (p *keyPairPhase) Owned() bool { return p.created }

// Compensate removes the local work directory, key file included, and
// deletes the remote keypair.
func (p *keyPairPhase) Compensate(ctx *provisioning.Context) error {
	if err := provisioning.RemoveTmpDir(ctx, true); err != nil {
		ctx.Observer.Printf("[%s] failed to delete local dir %s: %v", phaseKeyPair, ctx.Config.TmpDir(), err)
	}

	name := ctx.Config.Cell.KeyPairName()
	provisioning.LogResourceDeleting(ctx.Observer, phaseKeyPair, "keypair", name)
	if err := ctx.Backend.DeleteKeyPair(ctx); err != nil {
		return fmt.Errorf("failed to delete keypair %s: %w", name, err)
	}
	provisioning.LogResourceDeleted(ctx.Observer, phaseKeyPair, "keypair", name)
	return nil
}

// seedPhase builds the seed and uploads it with the other shared artifacts.
type seedPhase struct{}

func (seedPhase) Name() string { return phaseSeed }

func (seedPhase) Provision(ctx *provisioning.Context) error {
	return ctx.Backend.Seed(ctx)
}

// stackPhase submits the infrastructure stack.
type stackPhase struct{}

func (stackPhase) Name() string { return phaseStack }

func (stackPhase) Provision(ctx *provisioning.Context) error {
	name := ctx.Config.Cell.StackName()
	provisioning.LogResourceCreating(ctx.Observer, phaseStack, "stack", name)
	if err := ctx.Backend.CreateStack(ctx); err != nil {
		return err
	}
	provisioning.LogResourceCreated(ctx.Observer, phaseStack, "stack", name)
	return nil
}
