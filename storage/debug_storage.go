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

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/context"
)

var fDebug = flag.Bool(
	"objstore.debug",
	false,
	"Write storage debugging messages to stderr.")

var gLogger *log.Logger
var gLoggerOnce sync.Once

func initLogger() {
	const flags = log.Ldate | log.Ltime | log.Lmicroseconds
	gLogger = log.New(os.Stderr, "storage: ", flags)
}

// NewDebugStorage wraps the supplied Storage in a layer that prints debug
// messages for each call, if debugging is enabled via the --objstore.debug
// flag. Otherwise it returns the Storage unmodified.
func NewDebugStorage(wrapped Storage) (s Storage) {
	s = wrapped

	if *fDebug {
		gLoggerOnce.Do(initLogger)
		s = &debugStorage{
			logger:  gLogger,
			wrapped: s,
		}

		return
	}

	return
}

type debugStorage struct {
	logger  *log.Logger
	wrapped Storage

	nextRequestID uint64
}

////////////////////////////////////////////////////////////////////////
// Helpers
////////////////////////////////////////////////////////////////////////

func (s *debugStorage) mintRequestID() (id uint64) {
	id = atomic.AddUint64(&s.nextRequestID, 1)
	return
}

func (s *debugStorage) requestLogf(
	id uint64,
	format string,
	v ...interface{}) {
	s.logger.Print(fmt.Sprintf("0x%08x %s", id, fmt.Sprintf(format, v...)))
}

func (s *debugStorage) startRequest(
	format string,
	v ...interface{}) (id uint64, desc string, start time.Time) {
	start = time.Now()
	id = s.mintRequestID()
	desc = fmt.Sprintf(format, v...)

	s.requestLogf(id, "<- %s", desc)
	return
}

func (s *debugStorage) finishRequest(
	id uint64,
	desc string,
	start time.Time,
	err *error) {
	duration := time.Since(start)

	errDesc := "OK"
	if *err != nil {
		errDesc = (*err).Error()
	}

	s.requestLogf(id, "-> %s (%v): %s", desc, duration, errDesc)
}

// An io.WriteCloser that logs the outcome of Close using the request that
// handed it out.
type debugWriter struct {
	storage *debugStorage
	id      uint64
	desc    string
	start   time.Time
	wrapped io.WriteCloser
}

func (w *debugWriter) Write(p []byte) (int, error) {
	return w.wrapped.Write(p)
}

func (w *debugWriter) Close() (err error) {
	defer w.storage.finishRequest(w.id, w.desc, w.start, &err)

	err = w.wrapped.Close()
	return
}

////////////////////////////////////////////////////////////////////////
// Storage interface
////////////////////////////////////////////////////////////////////////

func (s *debugStorage) CreateObject(
	ctx context.Context,
	req *CreateObjectRequest) (w io.WriteCloser, err error) {
	// The request isn't complete until the returned writer is closed, so defer
	// the finishing log line until then.
	id, desc, start := s.startRequest("CreateObject(%s)", req.ID)

	w, err = s.wrapped.CreateObject(ctx, req)
	if err != nil {
		s.finishRequest(id, desc, start, &err)
		return
	}

	w = &debugWriter{
		storage: s,
		id:      id,
		desc:    desc,
		start:   start,
		wrapped: w,
	}

	return
}

func (s *debugStorage) CreateEmptyObject(
	ctx context.Context,
	req *CreateObjectRequest) (err error) {
	id, desc, start := s.startRequest("CreateEmptyObject(%s)", req.ID)
	defer s.finishRequest(id, desc, start, &err)

	err = s.wrapped.CreateEmptyObject(ctx, req)
	return
}

func (s *debugStorage) CreateEmptyObjects(
	ctx context.Context,
	reqs []*CreateObjectRequest) (err error) {
	id, desc, start := s.startRequest("CreateEmptyObjects(%d reqs)", len(reqs))
	defer s.finishRequest(id, desc, start, &err)

	err = s.wrapped.CreateEmptyObjects(ctx, reqs)
	return
}

func (s *debugStorage) NewReader(
	ctx context.Context,
	id ResourceID) (rc io.ReadCloser, err error) {
	reqID, desc, start := s.startRequest("NewReader(%s)", id)
	defer s.finishRequest(reqID, desc, start, &err)

	rc, err = s.wrapped.NewReader(ctx, id)
	return
}

func (s *debugStorage) CreateBucket(
	ctx context.Context,
	bucketName string) (err error) {
	id, desc, start := s.startRequest("CreateBucket(%q)", bucketName)
	defer s.finishRequest(id, desc, start, &err)

	err = s.wrapped.CreateBucket(ctx, bucketName)
	return
}

func (s *debugStorage) DeleteBuckets(
	ctx context.Context,
	bucketNames []string) (err error) {
	id, desc, start := s.startRequest("DeleteBuckets(%v)", bucketNames)
	defer s.finishRequest(id, desc, start, &err)

	err = s.wrapped.DeleteBuckets(ctx, bucketNames)
	return
}

func (s *debugStorage) DeleteObjects(
	ctx context.Context,
	ids []ResourceID) (err error) {
	id, desc, start := s.startRequest("DeleteObjects(%d ids)", len(ids))
	defer s.finishRequest(id, desc, start, &err)

	err = s.wrapped.DeleteObjects(ctx, ids)
	return
}

func (s *debugStorage) CopyObjects(
	ctx context.Context,
	req *CopyObjectsRequest) (err error) {
	id, desc, start := s.startRequest(
		"CopyObjects(%q -> %q, %d objects)",
		req.SrcBucket,
		req.DstBucket,
		len(req.SrcNames))

	defer s.finishRequest(id, desc, start, &err)

	err = s.wrapped.CopyObjects(ctx, req)
	return
}

func (s *debugStorage) ListBucketNames(
	ctx context.Context) (names []string, err error) {
	id, desc, start := s.startRequest("ListBucketNames()")
	defer s.finishRequest(id, desc, start, &err)

	names, err = s.wrapped.ListBucketNames(ctx)
	return
}

func (s *debugStorage) ListBucketInfo(
	ctx context.Context) (infos []*ItemInfo, err error) {
	id, desc, start := s.startRequest("ListBucketInfo()")
	defer s.finishRequest(id, desc, start, &err)

	infos, err = s.wrapped.ListBucketInfo(ctx)
	return
}

func (s *debugStorage) ListObjectNames(
	ctx context.Context,
	req *ListObjectsRequest) (names []string, err error) {
	id, desc, start := s.startRequest(
		"ListObjectNames(%q, %q, %q)",
		req.Bucket,
		req.Prefix,
		req.Delimiter)

	defer s.finishRequest(id, desc, start, &err)

	names, err = s.wrapped.ListObjectNames(ctx, req)
	return
}

func (s *debugStorage) ListObjectInfo(
	ctx context.Context,
	req *ListObjectsRequest) (infos []*ItemInfo, err error) {
	id, desc, start := s.startRequest(
		"ListObjectInfo(%q, %q, %q)",
		req.Bucket,
		req.Prefix,
		req.Delimiter)

	defer s.finishRequest(id, desc, start, &err)

	infos, err = s.wrapped.ListObjectInfo(ctx, req)
	return
}

func (s *debugStorage) StatItem(
	ctx context.Context,
	id ResourceID) (info *ItemInfo, err error) {
	reqID, desc, start := s.startRequest("StatItem(%s)", id)
	defer s.finishRequest(reqID, desc, start, &err)

	info, err = s.wrapped.StatItem(ctx, id)
	return
}

func (s *debugStorage) StatItems(
	ctx context.Context,
	ids []ResourceID) (infos []*ItemInfo, err error) {
	id, desc, start := s.startRequest("StatItems(%d ids)", len(ids))
	defer s.finishRequest(id, desc, start, &err)

	infos, err = s.wrapped.StatItems(ctx, ids)
	return
}

func (s *debugStorage) UpdateItems(
	ctx context.Context,
	updates []*ItemUpdate) (infos []*ItemInfo, err error) {
	id, desc, start := s.startRequest("UpdateItems(%d updates)", len(updates))
	defer s.finishRequest(id, desc, start, &err)

	infos, err = s.wrapped.UpdateItems(ctx, updates)
	return
}

func (s *debugStorage) WaitForBucketEmpty(
	ctx context.Context,
	bucketName string) (err error) {
	id, desc, start := s.startRequest("WaitForBucketEmpty(%q)", bucketName)
	defer s.finishRequest(id, desc, start, &err)

	err = s.wrapped.WaitForBucketEmpty(ctx, bucketName)
	return
}

func (s *debugStorage) Close() (err error) {
	id, desc, start := s.startRequest("Close()")
	defer s.finishRequest(id, desc, start, &err)

	err = s.wrapped.Close()
	return
}
