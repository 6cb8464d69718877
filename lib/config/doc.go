// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the gitter client configuration.
//
// Configuration comes from at most one file, named by the --config flag
// or the GITTER_CONFIG environment variable. There is no search path;
// when neither is set the built-in [Default] applies. The file format
// follows the extension: .yaml and .yml are YAML, .json and .jsonc are
// JSON with comments and trailing commas allowed.
//
// After loading, ${HOME} and ${VAR:-default} references in path fields
// are expanded and [Config.Validate] checks every field.
package config
