package hcloud

import (
	"context"
	"fmt"
	"os"

	"github.com/cellos/cell/internal/backend"
	"github.com/cellos/cell/internal/util/keygen"
	"github.com/cellos/cell/internal/util/labels"
)

// CreateKeyPair generates an RSA keypair, writes the private half to the
// cell key file and uploads the public half as an SSH key.
func (b *Backend) CreateKeyPair(ctx context.Context) error {
	name := b.cfg.Cell.KeyPairName()
	keyFile := b.cfg.KeyFile()

	existing, err := b.client.GetSSHKey(ctx, name)
	if err != nil {
		return err
	}
	if existing != nil {
		return &backend.KeyConflictError{KeyName: name, KeyFile: keyFile}
	}

	b.logf("CREATE key pair %s -> %s", name, keyFile)
	kp, err := keygen.GenerateRSAKeyPair(b.keyBits)
	if err != nil {
		return err
	}
	if err := keygen.WritePrivateKey(keyFile, kp.PrivateKey); err != nil {
		return err
	}

	keyLabels := labels.NewLabelBuilder(b.cfg.Cell.Name).Build()
	if _, err := b.client.CreateSSHKey(ctx, name, string(kp.PublicKey), keyLabels); err != nil {
		if rmErr := os.Remove(keyFile); rmErr != nil {
			b.logf("Error removing key file %s: %v", keyFile, rmErr)
		}
		return fmt.Errorf("failed to upload keypair %s: %w", name, err)
	}
	return nil
}

// DeleteKeyPair deletes the SSH key. A missing key counts as deleted.
func (b *Backend) DeleteKeyPair(ctx context.Context) error {
	name := b.cfg.Cell.KeyPairName()
	b.logf("DELETE keypair %s", name)
	return b.client.DeleteSSHKey(ctx, name)
}
