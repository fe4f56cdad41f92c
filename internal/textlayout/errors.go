/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration reports invalid layout parameters. Nothing is computed.
	ErrConfiguration = errors.New("configuration error")
	// ErrContractViolation reports a BreakSource that yielded offsets out of
	// order or out of range. It is a bug in the source and not retryable.
	ErrContractViolation = errors.New("break source contract violation")
)

// ConfigErrorf returns an error wrapping ErrConfiguration.
func ConfigErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// ContractViolationError describes the offending candidate.
type ContractViolationError struct {
	Offset   int
	Previous int
	Length   int
	Reason   string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("%v: %s (offset %d, previous %d, text length %d)",
		ErrContractViolation, e.Reason, e.Offset, e.Previous, e.Length)
}

func (e *ContractViolationError) Unwrap() error { return ErrContractViolation }
