package stack

import (
	"fmt"

	"github.com/pulumi/pulumi-azure-native-sdk/app/v2"
	"github.com/pulumi/pulumi-azure-native-sdk/operationalinsights/v2"
	"github.com/pulumi/pulumi-azure-native-sdk/resources/v2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// environment declares the Log Analytics workspace and the Container Apps
// managed environment that ships its console/system logs there.
func (d *Deployment) environment(ctx *pulumi.Context, group *resources.ResourceGroup) (*operationalinsights.Workspace, *app.ManagedEnvironment, error) {
	workspace, err := operationalinsights.NewWorkspace(ctx, fmt.Sprintf("%s-logs", d.cfg.Name), &operationalinsights.WorkspaceArgs{
		ResourceGroupName: group.Name,
		Location:          group.Location,
		RetentionInDays:   pulumi.Int(30),
		Sku: &operationalinsights.WorkspaceSkuArgs{
			Name: pulumi.String("PerGB2018"),
		},
	})
	if err != nil {
		return nil, nil, err
	}

	sharedKeys := operationalinsights.GetSharedKeysOutput(ctx, operationalinsights.GetSharedKeysOutputArgs{
		ResourceGroupName: group.Name,
		WorkspaceName:     workspace.Name,
	})

	environment, err := app.NewManagedEnvironment(ctx, fmt.Sprintf("%s-env", d.cfg.Name), &app.ManagedEnvironmentArgs{
		ResourceGroupName: group.Name,
		Location:          group.Location,
		AppLogsConfiguration: &app.AppLogsConfigurationArgs{
			Destination: pulumi.String("log-analytics"),
			LogAnalyticsConfiguration: &app.LogAnalyticsConfigurationArgs{
				CustomerId: workspace.CustomerId,
				SharedKey:  sharedKeys.PrimarySharedKey(),
			},
		},
	})
	if err != nil {
		return nil, nil, err
	}

	return workspace, environment, nil
}
