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

package s3store

import (
	"io"

	"github.com/minio/minio-go/v7"
	"golang.org/x/net/context"

	"github.com/jacobsa/objstore/storage"
)

// An io.WriteCloser that streams its contents to a PutObject call via a pipe.
// The call runs in its own goroutine; Close reports its outcome.
type objectWriter struct {
	pipeWriter *io.PipeWriter

	// Receives exactly one value: the result of the put call, already
	// translated via mapError.
	result chan error

	closed bool
}

func newObjectWriter(
	ctx context.Context,
	client *minio.Client,
	req *storage.CreateObjectRequest) (w *objectWriter) {
	pipeReader, pipeWriter := io.Pipe()

	w = &objectWriter{
		pipeWriter: pipeWriter,
		result:     make(chan error, 1),
	}

	opts := minio.PutObjectOptions{
		ContentType:     req.ContentType,
		ContentLanguage: req.ContentLanguage,
		ContentEncoding: req.ContentEncoding,
		CacheControl:    req.CacheControl,
		UserMetadata:    req.Metadata,
	}

	go func() {
		_, err := client.PutObject(
			ctx,
			req.ID.BucketName(),
			req.ID.ObjectName(),
			pipeReader,
			-1,
			opts)

		// Unblock any writes still pending on the pipe.
		pipeReader.CloseWithError(err)

		w.result <- mapError(err)
	}()

	return
}

func (w *objectWriter) Write(p []byte) (n int, err error) {
	if w.closed {
		panic("Call to Write after call to Close.")
	}

	n, err = w.pipeWriter.Write(p)
	return
}

func (w *objectWriter) Close() (err error) {
	if w.closed {
		panic("Close called twice.")
	}

	w.closed = true

	if err = w.pipeWriter.Close(); err != nil {
		return
	}

	err = <-w.result
	return
}
