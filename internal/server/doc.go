// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server exposes the toolpanel tools over a local JSON HTTP API.
//
// Endpoints:
//   - POST /v1/diff     - Line alignment, stats, unified output, inline spans
//   - POST /v1/validate - JSON validation outcome with error location
//   - POST /v1/format   - Re-indent JSON
//   - POST /v1/compress - Minify JSON
//   - POST /v1/locate   - Offset to line and column
//   - POST /v1/text     - Text transforms and counts
//   - POST /v1/base64   - Base64 encode and decode
//   - POST /v1/time     - Timestamp conversion
//   - GET  /health      - Health check
//   - GET  /stats       - Request counters
//
// Every request passes through recovery, request ID, security headers,
// logging, CORS and per-IP rate limiting middleware, in that order.
//
// # Usage
//
//	srv := server.NewServer(cfg.Server, server.WithLogger(logger))
//	go srv.Start()
//	defer srv.Shutdown(ctx)
package server
