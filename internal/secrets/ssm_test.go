package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lzjever/training-workspaces/internal/core"
)

type fakeSSM struct {
	out   *ssm.GetParameterOutput
	err   error
	input *ssm.GetParameterInput
}

func (f *fakeSSM) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.input = params
	return f.out, f.err
}

func TestAdminPassword(t *testing.T) {
	api := &fakeSSM{out: &ssm.GetParameterOutput{Parameter: &ssmtypes.Parameter{Value: aws.String("Admin123!Pass")}}}
	pw, err := NewStore(api).AdminPassword(context.Background(), "/training/admin")
	require.NoError(t, err)
	assert.Equal(t, "Admin123!Pass", pw)
	assert.Equal(t, "/training/admin", aws.ToString(api.input.Name))
	assert.True(t, aws.ToBool(api.input.WithDecryption))
}

func TestAdminPasswordAbsent(t *testing.T) {
	for name, api := range map[string]*fakeSSM{
		"no parameter": {out: &ssm.GetParameterOutput{}},
		"empty value":  {out: &ssm.GetParameterOutput{Parameter: &ssmtypes.Parameter{Value: aws.String("")}}},
		"not found":    {err: &ssmtypes.ParameterNotFound{Message: aws.String("nope")}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewStore(api).AdminPassword(context.Background(), "/training/admin")
			var appErr *core.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, core.ErrDependencyNotReady, appErr.Code)
			assert.Equal(t, core.ReasonAdminPasswordEmpty, appErr.Message)
		})
	}
}

func TestAdminPasswordProviderError(t *testing.T) {
	_, err := NewStore(&fakeSSM{err: errors.New("AccessDeniedException")}).AdminPassword(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, core.ErrProvider, core.CodeOf(err))
	assert.Contains(t, err.Error(), "AccessDeniedException")
}
