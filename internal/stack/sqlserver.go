package stack

import (
	"fmt"

	"github.com/pulumi/pulumi-azure-native-sdk/resources/v2"
	"github.com/pulumi/pulumi-azure-native-sdk/sql/v2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// sqlServer declares the logical server and its firewall rules. The rule for
// the deployer requires one synchronous HTTP lookup before registration;
// without it the in-program SQL setup step cannot reach the server. The
// rules are returned so that step can await their creation.
func (d *Deployment) sqlServer(ctx *pulumi.Context, group *resources.ResourceGroup, passwords *Passwords) (*sql.Server, []*sql.FirewallRule, error) {
	server, err := sql.NewServer(ctx, fmt.Sprintf("%s-sql", d.cfg.Name), &sql.ServerArgs{
		ResourceGroupName:          group.Name,
		Location:                   group.Location,
		AdministratorLogin:         pulumi.String(d.cfg.SQLAdminUser),
		AdministratorLoginPassword: passwords.SQLAdmin.Result,
		Version:                    pulumi.String("12.0"),
		MinimalTlsVersion:          pulumi.String("1.2"),
		PublicNetworkAccess:        pulumi.String("Enabled"),
	})
	if err != nil {
		return nil, nil, err
	}

	// 0.0.0.0-0.0.0.0 is Azure's marker rule for "allow Azure services",
	// which lets the Container App reach the server.
	azureRule, err := sql.NewFirewallRule(ctx, "allow-azure-services", &sql.FirewallRuleArgs{
		ResourceGroupName: group.Name,
		ServerName:        server.Name,
		StartIpAddress:    pulumi.String("0.0.0.0"),
		EndIpAddress:      pulumi.String("0.0.0.0"),
	})
	if err != nil {
		return nil, nil, err
	}

	deployerIP, err := d.ips.PublicIP(ctx.Context())
	if err != nil {
		return nil, nil, err
	}
	d.logger.Info("allowing deployer IP %s on the SQL firewall", deployerIP)

	deployerRule, err := sql.NewFirewallRule(ctx, "allow-deployer", &sql.FirewallRuleArgs{
		ResourceGroupName: group.Name,
		ServerName:        server.Name,
		StartIpAddress:    pulumi.String(deployerIP),
		EndIpAddress:      pulumi.String(deployerIP),
	})
	if err != nil {
		return nil, nil, err
	}

	return server, []*sql.FirewallRule{azureRule, deployerRule}, nil
}
