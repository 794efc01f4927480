package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/lzjever/training-workspaces/internal/core"
	"github.com/lzjever/training-workspaces/internal/observability"
)

// ParameterAPI is the subset of *ssm.Client the store needs.
type ParameterAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type Store struct {
	api ParameterAPI
}

func NewStore(api ParameterAPI) *Store {
	return &Store{api: api}
}

// AdminPassword reads the directory administrator password. An absent
// parameter or value is a dependency-not-ready failure.
func (s *Store) AdminPassword(ctx context.Context, name string) (string, error) {
	out, err := s.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	observability.ObserveCall("ssm", "GetParameter", err)
	if err != nil {
		var notFound *ssmtypes.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", core.WrapAppError(core.ErrDependencyNotReady, core.ReasonAdminPasswordEmpty, err)
		}
		return "", fmt.Errorf("get parameter %s: %w", name, err)
	}
	if out.Parameter == nil || aws.ToString(out.Parameter.Value) == "" {
		return "", core.NewAppError(core.ErrDependencyNotReady, core.ReasonAdminPasswordEmpty)
	}
	return aws.ToString(out.Parameter.Value), nil
}
