package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"optdrive/internal/config"
	"optdrive/internal/encoding"
	"optdrive/internal/setting"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "List configured settings and the names the backend sees",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			described, err := describeConfigured(cfg)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, described)
			}

			out := cmd.OutOrStdout()
			for _, component := range sortedKeys(described) {
				fmt.Fprintf(out, "Component %s\n", component)
				fmt.Fprintln(out, renderSettingsTable(described[component]))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of tables")
	return cmd
}

// describeConfigured renders the static descriptors of every configured
// setting, expanded to backend-visible names. No application command runs;
// current values stay empty.
func describeConfigured(cfg *config.Config) (map[string]map[string]setting.Descriptor, error) {
	described := make(map[string]map[string]setting.Descriptor, len(cfg.Components))
	for componentName, component := range cfg.Components {
		settings := map[string]setting.Descriptor{}
		for settingName, settingCfg := range component.Settings {
			descriptors, err := staticDescriptors(settingName, settingCfg)
			if err != nil {
				return nil, fmt.Errorf("describe setting %q of component %q: %w", settingName, componentName, err)
			}
			for name, descriptor := range descriptors {
				settings[name] = descriptor
			}
		}
		described[componentName] = settings
	}
	return described, nil
}

func staticDescriptors(name string, settingCfg config.SettingConfig) (map[string]setting.Descriptor, error) {
	if settingCfg.Encoder == nil {
		return map[string]setting.Descriptor{
			name: {
				Type:    settingCfg.Type,
				Min:     settingCfg.Min,
				Max:     settingCfg.Max,
				Step:    settingCfg.Step,
				Unit:    settingCfg.Unit,
				Values:  settingCfg.Values,
				Default: settingCfg.Default,
			},
		}, nil
	}
	encoderCfg, err := encoding.ParseConfig(settingCfg.Encoder)
	if err != nil {
		return nil, err
	}
	return encoding.Descriptors(encoderCfg)
}

func renderSettingsTable(settings map[string]setting.Descriptor) string {
	headers := []string{"Setting", "Type", "Min", "Max", "Step", "Default", "Unit", "Values"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft}

	rows := make([][]string, 0, len(settings))
	for _, name := range sortedKeys(settings) {
		descriptor := settings[name]
		rows = append(rows, []string{
			name,
			descriptor.Type,
			formatBound(descriptor.Min),
			formatBound(descriptor.Max),
			formatBound(descriptor.Step),
			formatBound(descriptor.Default),
			descriptor.Unit,
			strings.Join(descriptor.Values, ", "),
		})
	}
	return renderTable(headers, rows, aligns)
}

func formatBound(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
