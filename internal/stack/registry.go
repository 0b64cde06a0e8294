package stack

import (
	"fmt"
	"strings"

	"github.com/pulumi/pulumi-azure-native-sdk/containerregistry/v2"
	"github.com/pulumi/pulumi-azure-native-sdk/resources/v2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// RegistryCredentials carry the admin-user credentials used both to push
// the image and to let the Container App pull it.
type RegistryCredentials struct {
	Server   pulumi.StringOutput
	Username pulumi.StringOutput
	Password pulumi.StringOutput
}

func (d *Deployment) registry(ctx *pulumi.Context, group *resources.ResourceGroup) (*containerregistry.Registry, RegistryCredentials, error) {
	// Registry names must be globally unique and alphanumeric.
	registryName := strings.ReplaceAll(d.cfg.Name, "-", "") + "registry"

	registry, err := containerregistry.NewRegistry(ctx, registryName, &containerregistry.RegistryArgs{
		ResourceGroupName: group.Name,
		Location:          group.Location,
		Sku: &containerregistry.SkuArgs{
			Name: pulumi.String(d.cfg.Settings.Registry.Sku),
		},
		AdminUserEnabled: pulumi.Bool(true),
	})
	if err != nil {
		return nil, RegistryCredentials{}, err
	}

	creds := containerregistry.ListRegistryCredentialsOutput(ctx, containerregistry.ListRegistryCredentialsOutputArgs{
		ResourceGroupName: group.Name,
		RegistryName:      registry.Name,
	})

	username := creds.Username().ApplyT(func(u *string) (string, error) {
		if u == nil || *u == "" {
			return "", fmt.Errorf("registry returned no admin username; is the admin user enabled?")
		}
		return *u, nil
	}).(pulumi.StringOutput)

	password := creds.Passwords().ApplyT(func(pws []containerregistry.RegistryPasswordResponse) (string, error) {
		if len(pws) == 0 || pws[0].Value == nil {
			return "", fmt.Errorf("registry returned no admin passwords; is the admin user enabled?")
		}
		return *pws[0].Value, nil
	}).(pulumi.StringOutput)

	return registry, RegistryCredentials{
		Server:   registry.LoginServer,
		Username: username,
		Password: password,
	}, nil
}
