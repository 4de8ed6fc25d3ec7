// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build headless

package main

import "errors"

func runWindow(*Scene, Window) error {
	return errors.New("built with the headless tag")
}
