package main

import (
	"github.com/spf13/cobra"

	"optdrive/internal/driver"
)

func newQueryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "query [app-id]",
		Aliases: []string{"describe"},
		Short:   "Describe the current values of all configured settings",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			appID, err := resolveAppID(args, cfg)
			if err != nil {
				return err
			}

			emitter := ctx.protocolEmitter(cmd)
			result, err := driver.New(cfg, nil, logger, version).Query(cmd.Context(), appID)
			if err != nil {
				return emitFailure(emitter, err)
			}
			return emitter.Emit(result)
		},
	}
}
