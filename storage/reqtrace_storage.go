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
	"fmt"
	"io"

	"github.com/jacobsa/reqtrace"

	"golang.org/x/net/context"
)

// NewReqtraceStorage wraps the supplied Storage in a layer that annotates
// calls with reqtrace spans.
func NewReqtraceStorage(wrapped Storage) (s Storage) {
	s = &reqtraceStorage{
		Wrapped: wrapped,
	}

	return
}

type reqtraceStorage struct {
	Wrapped Storage
}

////////////////////////////////////////////////////////////////////////
// Storage interface
////////////////////////////////////////////////////////////////////////

func (s *reqtraceStorage) CreateObject(
	ctx context.Context,
	req *CreateObjectRequest) (w io.WriteCloser, err error) {
	// TODO(jacobsa): The span really covers until the returned writer is
	// closed, not until this method returns. A bespoke WriteCloser whose Close
	// method reports the final outcome would be more honest.
	desc := fmt.Sprintf("CreateObject: %s", req.ID)
	defer reqtrace.StartSpanWithError(&ctx, &err, desc)()

	w, err = s.Wrapped.CreateObject(ctx, req)
	return
}

func (s *reqtraceStorage) CreateEmptyObject(
	ctx context.Context,
	req *CreateObjectRequest) (err error) {
	desc := fmt.Sprintf("CreateEmptyObject: %s", req.ID)
	defer reqtrace.StartSpanWithError(&ctx, &err, desc)()

	err = s.Wrapped.CreateEmptyObject(ctx, req)
	return
}

func (s *reqtraceStorage) CreateEmptyObjects(
	ctx context.Context,
	reqs []*CreateObjectRequest) (err error) {
	desc := fmt.Sprintf("CreateEmptyObjects: %d requests", len(reqs))
	defer reqtrace.StartSpanWithError(&ctx, &err, desc)()

	err = s.Wrapped.CreateEmptyObjects(ctx, reqs)
	return
}

func (s *reqtraceStorage) NewReader(
	ctx context.Context,
	id ResourceID) (rc io.ReadCloser, err error) {
	desc := fmt.Sprintf("NewReader: %s", id)
	defer reqtrace.StartSpanWithError(&ctx, &err, desc)()

	rc, err = s.Wrapped.NewReader(ctx, id)
	return
}

func (s *reqtraceStorage) CreateBucket(
	ctx context.Context,
	bucketName string) (err error) {
	desc := fmt.Sprintf("CreateBucket: %q", bucketName)
	defer reqtrace.StartSpanWithError(&ctx, &err, desc)()

	err = s.Wrapped.CreateBucket(ctx, bucketName)
	return
}

func (s *reqtraceStorage) DeleteBuckets(
	ctx context.Context,
	bucketNames []string) (err error) {
	desc := fmt.Sprintf("DeleteBuckets: %d buckets", len(bucketNames))
	defer reqtrace.StartSpanWithError(&ctx, &err, desc)()

	err = s.Wrapped.DeleteBuckets(ctx, bucketNames)
	return
}

func (s *reqtraceStorage) DeleteObjects(
	ctx context.Context,
	ids []ResourceID) (err error) {
	desc := fmt.Sprintf("DeleteObjects: %d objects", len(ids))
	defer reqtrace.StartSpanWithError(&ctx, &err, desc)()

	err = s.Wrapped.DeleteObjects(ctx, ids)
	return
}

func (s *reqtraceStorage) CopyObjects(
	ctx context.Context,
	req *CopyObjectsRequest) (err error) {
	desc := fmt.Sprintf(
		"CopyObjects: %q -> %q, %d objects",
		req.SrcBucket,
		req.DstBucket,
		len(req.SrcNames))

	defer reqtrace.StartSpanWithError(&ctx, &err, desc)()

	err = s.Wrapped.CopyObjects(ctx, req)
	return
}

func (s *reqtraceStorage) ListBucketNames(
	ctx context.Context) (names []string, err error) {
	desc := "ListBucketNames"
	defer reqtrace.StartSpanWithError(&ctx, &err, desc)()

	names, err = s.Wrapped.ListBucketNames(ctx)
	return
}

func (s *reqtraceStorage) ListBucketInfo(
	ctx context.Context) (infos []*ItemInfo, err error) {
	desc := "ListBucketInfo"
	defer reqtrace.StartSpanWithError(&ctx, &err, desc)()

	infos, err = s.Wrapped.ListBucketInfo(ctx)
	return
}

func (s *reqtraceStorage) ListObjectNames(
	ctx context.Context,
	req *ListObjectsRequest) (names []string, err error) {
	desc := fmt.Sprintf("ListObjectNames: %q", req.Bucket)
	defer reqtrace.StartSpanWithError(&ctx, &err, desc)()

	names, err = s.Wrapped.ListObjectNames(ctx, req)
	return
}

func (s *reqtraceStorage) ListObjectInfo(
	ctx context.Context,
	req *ListObjectsRequest) (infos []*ItemInfo, err error) {
	desc := fmt.Sprintf("ListObjectInfo: %q", req.Bucket)
	defer reqtrace.StartSpanWithError(&ctx, &err, desc)()

	infos, err = s.Wrapped.ListObjectInfo(ctx, req)
	return
}

func (s *reqtraceStorage) StatItem(
	ctx context.Context,
	id ResourceID) (info *ItemInfo, err error) {
	desc := fmt.Sprintf("StatItem: %s", id)
	defer reqtrace.StartSpanWithError(&ctx, &err, desc)()

	info, err = s.Wrapped.StatItem(ctx, id)
	return
}

func (s *reqtraceStorage) StatItems(
	ctx context.Context,
	ids []ResourceID) (infos []*ItemInfo, err error) {
	desc := fmt.Sprintf("StatItems: %d items", len(ids))
	defer reqtrace.StartSpanWithError(&ctx, &err, desc)()

	infos, err = s.Wrapped.StatItems(ctx, ids)
	return
}

func (s *reqtraceStorage) UpdateItems(
	ctx context.Context,
	updates []*ItemUpdate) (infos []*ItemInfo, err error) {
	desc := fmt.Sprintf("UpdateItems: %d updates", len(updates))
	defer reqtrace.StartSpanWithError(&ctx, &err, desc)()

	infos, err = s.Wrapped.UpdateItems(ctx, updates)
	return
}

func (s *reqtraceStorage) WaitForBucketEmpty(
	ctx context.Context,
	bucketName string) (err error) {
	desc := fmt.Sprintf("WaitForBucketEmpty: %q", bucketName)
	defer reqtrace.StartSpanWithError(&ctx, &err, desc)()

	err = s.Wrapped.WaitForBucketEmpty(ctx, bucketName)
	return
}

func (s *reqtraceStorage) Close() (err error) {
	err = s.Wrapped.Close()
	return
}
