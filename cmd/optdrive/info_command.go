package main

import (
	"github.com/spf13/cobra"

	"optdrive/internal/driver"
	"optdrive/internal/logging"
)

func newInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Report driver identity and capabilities to the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			d := driver.New(cfg, nil, logging.NewNop(), version)
			return ctx.protocolEmitter(cmd).Emit(d.Info())
		},
	}
}
