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

package gcsstore

import (
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/jacobsa/objstore/storage"
)

// ShouldRetry classifies errors from this package's connection as worth
// retrying or not, for use with storage.NewRetryStorage.
func ShouldRetry(err error) (b bool) {
	// Transport-level errors.
	if storage.DefaultShouldRetry(err) {
		b = true
		return
	}

	// HTTP 50x errors.
	if typed, ok := err.(*googleapi.Error); ok {
		if typed.Code >= 500 && typed.Code < 600 {
			b = true
			return
		}

		// HTTP 429 errors (GCS uses these for rate limiting).
		if typed.Code == http.StatusTooManyRequests {
			b = true
			return
		}
	}

	return
}
