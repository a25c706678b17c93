package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/cellos/cell/internal/backend"
	"github.com/cellos/cell/internal/util/keygen"
)

// CreateKeyPair creates the EC2 keypair of the cell and writes its private
// key to the cell key file. An existing keypair of the same name is never reused.
func (b *Backend) CreateKeyPair(ctx context.Context) error {
	name := b.cfg.Cell.KeyPairName()
	keyFile := b.cfg.KeyFile()

	existing, err := b.ec2.DescribeKeyPairs(ctx, &ec2.DescribeKeyPairsInput{
		Filters: []types.Filter{{Name: aws.String("key-name"), Values: []string{name}}},
	})
	if err != nil {
		return fmt.Errorf("failed to describe keypairs: %w", err)
	}
	for _, kp := range existing.KeyPairs {
		if aws.ToString(kp.KeyName) == name {
			return &backend.KeyConflictError{KeyName: name, KeyFile: keyFile}
		}
	}

	b.logf("CREATE key pair %s -> %s", name, keyFile)
	out, err := b.ec2.CreateKeyPair(ctx, &ec2.CreateKeyPairInput{KeyName: aws.String(name)})
	if err != nil {
		return fmt.Errorf("failed to create keypair %s: %w", name, err)
	}

	if err := keygen.WritePrivateKey(keyFile, []byte(aws.ToString(out.KeyMaterial))); err != nil {
		// The private half is lost, so the remote key is useless.
		if _, delErr := b.ec2.DeleteKeyPair(ctx, &ec2.DeleteKeyPairInput{KeyName: aws.String(name)}); delErr != nil {
			b.logf("Error deleting keypair %s: %v", name, delErr)
		}
		return fmt.Errorf("failed to write key file %s: %w", keyFile, err)
	}
	return nil
}

// DeleteKeyPair deletes the EC2 keypair. EC2 treats a missing keypair as deleted.
func (b *Backend) DeleteKeyPair(ctx context.Context) error {
	name := b.cfg.Cell.KeyPairName()
	b.logf("DELETE keypair %s", name)
	if _, err := b.ec2.DeleteKeyPair(ctx, &ec2.DeleteKeyPairInput{KeyName: aws.String(name)}); err != nil {
		return fmt.Errorf("failed to delete keypair %s: %w", name, err)
	}
	return nil
}
