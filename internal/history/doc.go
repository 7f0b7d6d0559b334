// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history keeps a bounded SQLite log of recent tool runs.
//
// Only run summaries are stored (tool, status, a one-line summary and the
// duration), never the text that was processed.
//
// # Usage
//
//	store, err := history.Open(path, history.WithMaxEntries(cfg.History.MaxEntries))
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	store.Record(ctx, history.Entry{Kind: history.KindValidate, Status: "valid"})
//	recent, _ := store.List(ctx, "", 20)
package history
