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

// Package httputil contains HTTP transport helpers shared by the backends
// that speak HTTP to their services.
package httputil

import (
	"flag"
	"log"
	"net/http"
	"sync/atomic"
)

var fDebug = flag.Bool(
	"objstore.debug_http",
	false,
	"Dump information about HTTP requests made to storage backends.")

// DebuggingRoundTripper wraps the supplied round tripper in a layer that
// logs a line per request and response when --objstore.debug_http is set.
// Otherwise it returns the round tripper unmodified.
func DebuggingRoundTripper(in http.RoundTripper) (out http.RoundTripper) {
	out = in
	if *fDebug {
		out = &debuggingRoundTripper{wrapped: in}
	}

	return
}

type debuggingRoundTripper struct {
	wrapped http.RoundTripper

	// The ID to hand out for the next request.
	nextID uint64
}

func (t *debuggingRoundTripper) RoundTrip(
	req *http.Request) (res *http.Response, err error) {
	id := atomic.AddUint64(&t.nextID, 1)
	log.Printf("http: <- #%d: %s %s", id, req.Method, req.URL)

	res, err = t.wrapped.RoundTrip(req)
	if err != nil {
		log.Printf("http: -> #%d: error: %v", id, err)
		return
	}

	log.Printf(
		"http: -> #%d: %s (%d bytes)",
		id,
		res.Status,
		res.ContentLength)

	return
}
