// Copyright 2026 The gscore Authors
// This file is part of the gscore library.
//
// The gscore library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The gscore library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the gscore library. If not, see <http://www.gnu.org/licenses/>.

package vm

import (
	"errors"
	"fmt"
	"testing"
)

func TestFailureCode(t *testing.T) {
	tests := []struct {
		err  error
		code uint64
	}{
		{nil, CodeOK},
		{errors.New("boom"), CodeUnknown},
		{fmt.Errorf("charging: %w", ErrOutOfStep), CodeOutOfStep},
		{ErrCallDepth, CodeStackOverflow},
		{ErrArgumentType, CodeInvalidParameter},
		{fmt.Errorf("%w: x", ErrEventDeclaration), CodeIllegalFormat},
		{ErrScoreNotFound, CodeContractNotFound},
		{ErrWriteProtected, CodeAccessDenied},
		{fmt.Errorf("lua: %w", ErrExecutionTimeout), CodeTimeout},
		{ErrScore, CodeScoreError},
		{NewRevert(0, "zero"), CodeScoreError},
		{fmt.Errorf("nested: %w", NewRevert(7, "seven")), CodeScoreError + 7},
		{NewRevert(10_000, "big"), CodeMaxUserRevertCode},
	}
	for i, tt := range tests {
		if code := FailureCode(tt.err); code != tt.code {
			t.Errorf("test %d (%v): have %d want %d", i, tt.err, code, tt.code)
		}
	}
}

func TestErrorHierarchy(t *testing.T) {
	if !errors.Is(ErrArgumentType, ErrScore) {
		t.Fatalf("argument type errors must match ErrScore")
	}
	if !errors.Is(ErrEventDeclaration, ErrEventLog) {
		t.Fatalf("declaration errors must match ErrEventLog")
	}
	if !errors.Is(NewRevert(1, "x"), ErrScore) {
		t.Fatalf("reverts must match ErrScore")
	}
	if errors.Is(ErrEventLog, ErrScore) {
		t.Fatalf("event log errors are not score errors")
	}
}
