package stack

import (
	"fmt"

	"github.com/pulumi/pulumi-azure-native-sdk/resources/v2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

func (d *Deployment) resourceGroup(ctx *pulumi.Context) (*resources.ResourceGroup, error) {
	return resources.NewResourceGroup(ctx, fmt.Sprintf("%s-rg", d.cfg.Name), &resources.ResourceGroupArgs{
		Location: pulumi.String(d.cfg.Location),
		Tags: pulumi.StringMap{
			"app":        pulumi.String(d.cfg.Name),
			"managed-by": pulumi.String("pulumi"),
		},
	})
}
