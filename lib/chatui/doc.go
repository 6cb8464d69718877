// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package chatui is the interactive terminal view of one room: a
// scrolling transcript fed by a live subscription, a composer line,
// and a status bar with connection state and feed counters.
//
// [Model] is a bubbletea model and can be driven directly in tests.
// [Run] starts a full-screen program and closes the subscription when
// the user quits.
package chatui
