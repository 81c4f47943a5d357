// SPDX-License-Identifier: MIT

package config

import (
	"errors"

	"github.com/adrkit/adrkit/internal/metrics"
	"github.com/adrkit/adrkit/internal/validate"
)

// ErrUnknownConfigField classifies strict YAML parse failures caused by
// unknown keys. Use errors.Is instead of string matching.
var ErrUnknownConfigField = errors.New("unknown config field")

// countConfigErrors records each validation failure in the metrics so
// operators can alert on rejected reloads.
func countConfigErrors(err error) {
	var verr validate.ValidationError
	if errors.As(err, &verr) {
		for range verr.Errors() {
			metrics.IncConfigValidationError()
		}
		return
	}
	metrics.IncConfigValidationError()
}
