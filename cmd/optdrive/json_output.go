package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"optdrive/internal/driver"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emitFailure reports an operation error on the protocol stream as an error
// envelope, then returns the error so the process exits non-zero.
func emitFailure(emitter *driver.Emitter, err error) error {
	if emitErr := emitter.Emit(driver.Envelope(err)); emitErr != nil {
		return errors.Join(err, emitErr)
	}
	return err
}
