// SPDX-License-Identifier: MIT

package api

import _ "embed"

// openAPISpec is the API contract, embedded so the binary serves its own
// documentation and the contract test validates against the same bytes.
//
//go:embed openapi.yaml
var openAPISpec []byte
