package main

import (
	"github.com/awnumar/memguard"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/systmms/keycloak-aca/internal/config"
	"github.com/systmms/keycloak-aca/internal/logging"
	"github.com/systmms/keycloak-aca/internal/netinfo"
	"github.com/systmms/keycloak-aca/internal/sqlsetup"
	"github.com/systmms/keycloak-aca/internal/stack"
)

func main() {
	defer memguard.Purge()

	pulumi.Run(func(ctx *pulumi.Context) error {
		cfg, err := config.Load(ctx)
		if err != nil {
			return err
		}
		logger := logging.New(cfg.Debug, false)

		deployment := stack.New(cfg, logger, netinfo.NewResolver(logger), sqlsetup.New(logger))
		if _, err := deployment.Deploy(ctx); err != nil {
			logger.Error("deployment failed: %v", err)
			return err
		}
		return nil
	})
}
