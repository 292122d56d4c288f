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
)

// List score execution errors. Callers match them with errors.Is; the
// wrapping below makes ErrArgumentType match ErrScore and
// ErrEventDeclaration match ErrEventLog.
var (
	ErrScore            = errors.New("score error")
	ErrArgumentType     = fmt.Errorf("%w: argument type mismatch", ErrScore)
	ErrEventLog         = errors.New("event log error")
	ErrEventDeclaration = fmt.Errorf("%w: invalid event declaration", ErrEventLog)

	ErrOutOfStep            = errors.New("out of step")
	ErrContextPoolExhausted = errors.New("context pool exhausted")
	ErrNoActiveContext      = errors.New("no active context")
	ErrWriteProtected       = errors.New("write protected")
	ErrCallDepth            = errors.New("max call depth exceeded")
	ErrExecutionTimeout     = errors.New("execution timeout")

	ErrScoreNotFound    = errors.New("score not found")
	ErrScoreExists      = errors.New("score already exists")
	ErrMethodNotFound   = errors.New("method not found")
	ErrMethodNotPayable = errors.New("method not payable")
	ErrInvalidParams    = errors.New("invalid parameters")
	ErrOutOfBalance     = errors.New("out of balance")
	ErrAccessDenied     = errors.New("access denied")
)

// Failure codes recorded in receipts.
const (
	CodeOK                uint64 = 0
	CodeUnknown           uint64 = 1
	CodeContractNotFound  uint64 = 2
	CodeMethodNotFound    uint64 = 3
	CodeMethodNotPayable  uint64 = 4
	CodeIllegalFormat     uint64 = 5
	CodeInvalidParameter  uint64 = 6
	CodeInvalidInstance   uint64 = 7
	CodeInvalidContainer  uint64 = 8
	CodeAccessDenied      uint64 = 9
	CodeOutOfStep         uint64 = 10
	CodeOutOfBalance      uint64 = 11
	CodeTimeout           uint64 = 12
	CodeStackOverflow     uint64 = 13
	CodeScoreError        uint64 = 32
	CodeMaxUserRevertCode uint64 = 999
)

// RevertError is raised by a score to abort its call tree with a user
// defined code. Codes are offset by CodeScoreError in receipts.
type RevertError struct {
	Code    uint64
	Message string
}

// NewRevert builds a RevertError.
func NewRevert(code uint64, msg string) *RevertError {
	return &RevertError{Code: code, Message: msg}
}

func (e *RevertError) Error() string {
	return fmt.Sprintf("%v: reverted(%d): %s", ErrScore, e.Code, e.Message)
}

// Unwrap makes a revert match ErrScore.
func (e *RevertError) Unwrap() error { return ErrScore }

var codeTable = []struct {
	err  error
	code uint64
}{
	{ErrOutOfStep, CodeOutOfStep},
	{ErrOutOfBalance, CodeOutOfBalance},
	{ErrCallDepth, CodeStackOverflow},
	{ErrWriteProtected, CodeAccessDenied},
	{ErrAccessDenied, CodeAccessDenied},
	{ErrScoreNotFound, CodeContractNotFound},
	{ErrMethodNotFound, CodeMethodNotFound},
	{ErrMethodNotPayable, CodeMethodNotPayable},
	{ErrArgumentType, CodeInvalidParameter},
	{ErrInvalidParams, CodeInvalidParameter},
	{ErrEventLog, CodeIllegalFormat},
	{ErrNoActiveContext, CodeInvalidContainer},
	{ErrContextPoolExhausted, CodeTimeout},
	{ErrExecutionTimeout, CodeTimeout},
	{ErrScoreExists, CodeInvalidInstance},
	{ErrScore, CodeScoreError},
}

// FailureCode maps an error chain to its receipt failure code.
func FailureCode(err error) uint64 {
	if err == nil {
		return CodeOK
	}
	var revert *RevertError
	if errors.As(err, &revert) {
		code := CodeScoreError + revert.Code
		if code > CodeMaxUserRevertCode {
			code = CodeMaxUserRevertCode
		}
		return code
	}
	for _, entry := range codeTable {
		if errors.Is(err, entry.err) {
			return entry.code
		}
	}
	return CodeUnknown
}
