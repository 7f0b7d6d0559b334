// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package jsonfmt validates, formats and compresses JSON documents and turns
// parser failures into line/column diagnostics.
//
// Parsing is delegated to a Parser. The default StdParser wraps
// encoding/json and reports failures as "... at position N", which the
// Validator resolves through the locate package.
//
// # Key Types
//
//   - Parser: The black-box structured-data engine
//   - Validator: Validate, Format and Compress with preprocessing options
//   - Outcome: Empty, Valid or Invalid with an optional location
//
// # Usage
//
//	v := jsonfmt.NewValidator(nil, jsonfmt.Options{AutoWrap: true})
//	out, outcome := v.Format(`"name": "toolpanel"`)
//	if !outcome.Valid() {
//	    fmt.Println(outcome)
//	}
package jsonfmt
