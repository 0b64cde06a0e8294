package stack

import (
	"github.com/pulumi/pulumi-docker/sdk/v4/go/docker"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// image builds the Keycloak image from the local build context and pushes it
// to the registry. The build itself happens on the deployer's Docker daemon.
func (d *Deployment) image(ctx *pulumi.Context, creds RegistryCredentials) (*docker.Image, error) {
	return docker.NewImage(ctx, "keycloak-image", &docker.ImageArgs{
		ImageName: pulumi.Sprintf("%s/%s:%s", creds.Server, d.cfg.Name, d.cfg.ImageVersion),
		Build: &docker.DockerBuildArgs{
			Context:  pulumi.String("./keycloak"),
			Platform: pulumi.String("linux/amd64"),
			Args: pulumi.StringMap{
				"KEYCLOAK_VERSION": pulumi.String(d.cfg.ImageVersion),
			},
		},
		Registry: &docker.RegistryArgs{
			Server:   creds.Server,
			Username: creds.Username,
			Password: creds.Password,
		},
	})
}
