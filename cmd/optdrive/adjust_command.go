package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"optdrive/internal/driver"
	"optdrive/internal/setting"
	"optdrive/internal/state"
)

func newAdjustCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "adjust [app-id]",
		Short: "Apply setting values read from stdin to the managed application",
		Long: "Reads a JSON adjust request from stdin, encodes the requested values,\n" +
			"and runs the configured pre/apply/post commands. The result or error\n" +
			"envelope is written to stdout as a single JSON line.",
		Args: cobra.MaximumNArgs(1),
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

			var req driver.Request
			if err := json.NewDecoder(cmd.InOrStdin()).Decode(&req); err != nil {
				return emitFailure(emitter, fmt.Errorf("%w: parse adjust request: %v", setting.ErrConfiguration, err))
			}

			store, err := state.Open(cfg)
			if err != nil {
				return emitFailure(emitter, err)
			}
			defer store.Close()

			runCtx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			reporter := driver.NewReporter(emitter, logger,
				time.Duration(cfg.Workflow.ProgressIntervalSeconds)*time.Second)
			reporter.Set(0, "adjusting "+appID)
			var wg sync.WaitGroup
			wg.Add(1)
			go reporter.Run(runCtx, &wg)

			result, err := driver.New(cfg, store, logger, version).Adjust(runCtx, appID, req)
			cancel()
			wg.Wait()

			if err != nil {
				return emitFailure(emitter, err)
			}
			return emitter.Emit(result)
		},
	}
}
