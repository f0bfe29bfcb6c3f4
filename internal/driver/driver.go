package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"optdrive/internal/config"
	"optdrive/internal/logging"
	"optdrive/internal/setting"
	"optdrive/internal/state"
)

// Driver executes adjust and query operations for one managed application.
type Driver struct {
	cfg     *config.Config
	store   *state.Store
	logger  *slog.Logger
	version string
}

// New creates a driver. The store may be nil when the operation does not
// persist state (query, info).
func New(cfg *config.Config, store *state.Store, logger *slog.Logger, version string) *Driver {
	if cfg.Driver.Version != "" {
		version = cfg.Driver.Version
	}
	return &Driver{
		cfg:     cfg,
		store:   store,
		logger:  logging.NewComponentLogger(logger, "driver"),
		version: version,
	}
}

// Info reports the driver identity to the backend.
func (d *Driver) Info() InfoResult {
	return InfoResult{Version: d.version, HasCancel: d.cfg.Driver.HasCancel}
}

// Query asks the managed application for its current raw values and renders
// them as setting descriptors, decoding encoder-backed settings.
func (d *Driver) Query(ctx context.Context, appID string) (QueryResult, error) {
	if d.cfg.Commands.Query == "" {
		return QueryResult{}, fmt.Errorf("%w: commands.query must be configured", setting.ErrConfiguration)
	}

	stdout, err := runCommand(ctx, d.logger, d.cfg.CommandShell(), "query", d.cfg.Commands.Query, nil, d.timeout())
	if err != nil {
		return QueryResult{}, err
	}

	var observed map[string]map[string]any
	if err := json.Unmarshal(stdout, &observed); err != nil {
		return QueryResult{}, fmt.Errorf("parse query command output: %w", err)
	}

	result := QueryResult{Application: Description{Components: map[string]DescribedComponent{}}}
	for componentName, component := range d.cfg.Components {
		described := DescribedComponent{Settings: map[string]setting.Descriptor{}}
		for settingName, settingCfg := range component.Settings {
			raw := observed[componentName][settingName]
			descriptors, err := EncodeDescribeIfNeeded(settingName, settingCfg, raw)
			if err != nil {
				return QueryResult{}, fmt.Errorf("describe setting %q of component %q: %w", settingName, componentName, err)
			}
			for name, descriptor := range descriptors {
				described.Settings[name] = descriptor
			}
		}
		result.Application.Components[componentName] = described
	}

	d.logger.Info("query complete", logging.String("app_id", appID),
		logging.Int("components", len(result.Application.Components)))
	return result, nil
}

// Adjust applies the requested setting values to the managed application:
// optional pre command, encode and apply, optional post command. The
// operation is recorded in the state store whether it succeeds or fails.
func (d *Driver) Adjust(ctx context.Context, appID string, req Request) (AdjustResult, error) {
	operationID := uuid.NewString()
	logger := d.logger.With(logging.String("operation_id", operationID), logging.String("app_id", appID))

	payload, err := d.applyPayload(req)
	if err != nil {
		d.record(ctx, logger, operationID, appID, nil, err)
		return AdjustResult{}, err
	}
	encoded, err := json.Marshal(map[string]any{
		"application": map[string]any{"components": payload},
	})
	if err != nil {
		return AdjustResult{}, fmt.Errorf("marshal apply payload: %w", err)
	}

	if err := d.runAdjustCommands(ctx, logger, encoded); err != nil {
		d.record(ctx, logger, operationID, appID, encoded, err)
		return AdjustResult{}, err
	}

	d.record(ctx, logger, operationID, appID, encoded, nil)
	logger.Info("adjust complete")
	return AdjustResult{Status: "ok", Reason: "success"}, nil
}

// applyPayload encodes the requested values per component. Settings absent
// from the request are left untouched rather than failing the operation.
func (d *Driver) applyPayload(req Request) (map[string]map[string]any, error) {
	payload := make(map[string]map[string]any, len(d.cfg.Components))
	for componentName, component := range d.cfg.Components {
		adjustData := req.Application.Components[componentName].Settings
		if len(adjustData) == 0 {
			continue
		}
		values := map[string]any{}
		for settingName, settingCfg := range component.Settings {
			if settingCfg.Encoder == nil {
				if _, requested := adjustData[settingName]; !requested {
					continue
				}
			}
			value, err := EncodeValueIfNeeded(settingName, settingCfg, adjustData)
			if err != nil {
				return nil, fmt.Errorf("encode setting %q of component %q: %w", settingName, componentName, err)
			}
			values[settingName] = value
		}
		if len(values) > 0 {
			payload[componentName] = values
		}
	}
	return payload, nil
}

func (d *Driver) runAdjustCommands(ctx context.Context, logger *slog.Logger, encoded []byte) error {
	shell := d.cfg.CommandShell()
	if d.cfg.Commands.Pre != "" {
		if _, err := runCommand(ctx, logger, shell, "pre", d.cfg.Commands.Pre, nil, d.timeout()); err != nil {
			return err
		}
	}
	if d.cfg.Commands.Apply == "" {
		return fmt.Errorf("%w: commands.apply must be configured", setting.ErrConfiguration)
	}
	if _, err := runCommand(ctx, logger, shell, "apply", d.cfg.Commands.Apply, encoded, d.timeout()); err != nil {
		return err
	}
	if d.cfg.Commands.Post != "" {
		if _, err := runCommand(ctx, logger, shell, "post", d.cfg.Commands.Post, nil, d.timeout()); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) record(ctx context.Context, logger *slog.Logger, operationID, appID string, payload []byte, opErr error) {
	if d.store == nil {
		return
	}
	adj := state.Adjustment{
		ID:        operationID,
		AppID:     appID,
		Status:    "ok",
		Reason:    "success",
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	if opErr != nil {
		env := Envelope(opErr)
		adj.Status = env.Status
		adj.Reason = env.Reason
	}
	if err := d.store.RecordAdjustment(ctx, adj); err != nil {
		logger.Warn("recording adjustment failed", logging.Error(err))
	}
}

func (d *Driver) timeout() time.Duration {
	return time.Duration(d.cfg.Commands.TimeoutSeconds) * time.Second
}
