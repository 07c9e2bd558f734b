// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package hdb

import (
	"log/slog"
	"os"
)

const logPrefix = "hdb"

// dlog is the package-wide logger for diagnostic output (connection
// lifecycle, redirects, auth method negotiation). Callers that want their
// own sink can replace it via SetLogger.
var dlog = slog.New(slog.NewTextHandler(os.Stderr, nil)).With("component", logPrefix)

// SetLogger replaces the package-wide logger.
func SetLogger(logger *slog.Logger) { dlog = logger }
