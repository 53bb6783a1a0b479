// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

// Package services adapts blocking components to suture.Service so they can
// run under the supervisor tree.
//
//   - HTTPServerService wraps *http.Server with graceful shutdown.
//   - DedupeService runs the watch-event dedupe pass on an interval.
//
// The audit logger implements suture.Service itself and needs no wrapper.
package services
