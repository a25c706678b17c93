package aws

import (
	"context"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{})
	assert.ErrorContains(t, err, "missing region")

	cfg, err := New(context.Background(), Config{Region: "us-west-1", AccessKeyID: "AKIA", SecretAccessKey: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "us-west-1", cfg.Region)

	creds, err := cfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKIA", creds.AccessKeyID)

	clients := NewClients(cfg)
	assert.NotNil(t, clients.CloudFormation)
	assert.NotNil(t, clients.EC2)
	assert.NotNil(t, clients.AutoScaling)
	assert.NotNil(t, clients.ELB)
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		err          error
		wantCode     string
		wantNotFound bool
		wantNoUpdate bool
	}{
		{name: "plain error", err: assert.AnError},
		{name: "missing stack", err: &smithy.GenericAPIError{Code: "ValidationError", Message: "Stack with id demo1 does not exist"}, wantCode: "ValidationError", wantNotFound: true},
		{name: "missing keypair", err: &smithy.GenericAPIError{Code: "InvalidKeyPair.NotFound"}, wantCode: "InvalidKeyPair.NotFound", wantNotFound: true},
		{name: "no updates", err: &smithy.GenericAPIError{Code: "ValidationError", Message: "No updates are to be performed."}, wantCode: "ValidationError", wantNoUpdate: true},
		{name: "throttled", err: &smithy.GenericAPIError{Code: "Throttling"}, wantCode: "Throttling"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantCode, ErrorCode(tt.err))
			assert.Equal(t, tt.wantNotFound, IsNotFound(tt.err))
			assert.Equal(t, tt.wantNoUpdate, IsNoUpdates(tt.err))
		})
	}
}
