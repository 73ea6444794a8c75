// Copyright 2015 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import "errors"

// A *NotFoundError value is an error that indicates the backend reported the
// resource in question does not exist. Implementations of Storage must return
// errors of this type for existence failures, distinguishably from transport
// and other failures; see notes on the methods of Storage.
type NotFoundError struct {
	// A wrapped error. NotFoundError.Error simply returns Err.Error().
	Err error
}

func (nfe *NotFoundError) Error() string {
	return nfe.Err.Error()
}

func (nfe *NotFoundError) Unwrap() error {
	return nfe.Err
}

// A *PreconditionError value is an error that indicates a precondition
// failed. See notes on the methods of Storage.
type PreconditionError struct {
	// A wrapped error. PreconditionError.Error simply returns Err.Error().
	Err error
}

func (pe *PreconditionError) Error() string {
	return pe.Err.Error()
}

func (pe *PreconditionError) Unwrap() error {
	return pe.Err
}

// An *InvalidArgumentError value is an error that indicates a malformed
// argument, e.g. a ResourceID construction attempt with an empty bucket name.
type InvalidArgumentError struct {
	// A wrapped error. InvalidArgumentError.Error simply returns Err.Error().
	Err error
}

func (iae *InvalidArgumentError) Error() string {
	return iae.Err.Error()
}

func (iae *InvalidArgumentError) Unwrap() error {
	return iae.Err
}

// IsNotFound returns true if the error, anywhere along its chain, is a
// *NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// IsInvalidArgument returns true if the error, anywhere along its chain, is
// an *InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	var iae *InvalidArgumentError
	return errors.As(err, &iae)
}
