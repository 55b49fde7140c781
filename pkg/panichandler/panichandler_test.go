// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package panichandler

import (
	"errors"
	"io"
	"testing"
)

func recoverInto(fn func()) (rtnErr error) {
	defer func() {
		rtnErr = PanicHandler("test", recover())
	}()
	fn()
	return nil
}

func TestPanicHandler(t *testing.T) {
	if err := recoverInto(func() {}); err != nil {
		t.Errorf("no panic should give nil, got %v", err)
	}
	err := recoverInto(func() { panic("boom") })
	if err == nil || err.Error() != "panic in test: boom" {
		t.Errorf("err = %v", err)
	}
	err = recoverInto(func() { panic(io.EOF) })
	if !errors.Is(err, io.EOF) {
		t.Errorf("panic error should be wrapped, got %v", err)
	}
}
