package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/directoryservice"

	"github.com/lzjever/training-workspaces/internal/core"
	"github.com/lzjever/training-workspaces/internal/observability"
)

// DirectoryAPI is the subset of *directoryservice.Client used here.
type DirectoryAPI interface {
	DescribeDirectories(ctx context.Context, params *directoryservice.DescribeDirectoriesInput, optFns ...func(*directoryservice.Options)) (*directoryservice.DescribeDirectoriesOutput, error)
	ResetUserPassword(ctx context.Context, params *directoryservice.ResetUserPasswordInput, optFns ...func(*directoryservice.Options)) (*directoryservice.ResetUserPasswordOutput, error)
}

type Service struct {
	api DirectoryAPI
}

func NewService(api DirectoryAPI) *Service {
	return &Service{api: api}
}

// Describe looks the directory up. A directory the service does not
// report yet is a dependency-not-ready failure.
func (s *Service) Describe(ctx context.Context, directoryID string) (core.DirectoryHandle, error) {
	out, err := s.api.DescribeDirectories(ctx, &directoryservice.DescribeDirectoriesInput{
		DirectoryIds: []string{directoryID},
	})
	observability.ObserveCall("ds", "DescribeDirectories", err)
	if err != nil {
		return core.DirectoryHandle{}, fmt.Errorf("describe directory %s: %w", directoryID, err)
	}
	if len(out.DirectoryDescriptions) == 0 {
		return core.DirectoryHandle{}, core.NewAppError(core.ErrDependencyNotReady, core.ReasonEndpointNotFound)
	}
	d := out.DirectoryDescriptions[0]
	name := aws.ToString(d.Name)
	return core.DirectoryHandle{
		ID:       directoryID,
		Name:     name,
		BaseDN:   BaseDNForDomain(name),
		DNSAddrs: d.DnsIpAddrs,
		Stage:    string(d.Stage),
	}, nil
}

// ResolveEndpoint returns the address to reach the directory over LDAP.
func (s *Service) ResolveEndpoint(ctx context.Context, directoryID string) (string, error) {
	handle, err := s.Describe(ctx, directoryID)
	if err != nil {
		return "", err
	}
	endpoint, ok := handle.Endpoint()
	if !ok {
		return "", core.NewAppError(core.ErrDependencyNotReady, core.ReasonEndpointNotFound)
	}
	return endpoint, nil
}

func (s *Service) ResetPassword(ctx context.Context, directoryID, username, password string) error {
	_, err := s.api.ResetUserPassword(ctx, &directoryservice.ResetUserPasswordInput{
		DirectoryId: aws.String(directoryID),
		UserName:    aws.String(username),
		NewPassword: aws.String(password),
	})
	observability.ObserveCall("ds", "ResetUserPassword", err)
	if err != nil {
		return fmt.Errorf("reset password for %s: %w", username, err)
	}
	return nil
}

// BaseDNForDomain returns the default users container of a Simple AD
// domain, e.g. CN=Users,DC=corp,DC=example,DC=com.
func BaseDNForDomain(domain string) string {
	domain = strings.Trim(strings.TrimSpace(domain), ".")
	if domain == "" {
		return ""
	}
	return "CN=Users,DC=" + strings.Join(strings.Split(domain, "."), ",DC=")
}
