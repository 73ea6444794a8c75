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

// Package gcsstore implements storage.Storage on top of Google Cloud
// Storage's JSON API. GCS list operations are only eventually consistent, so
// callers that need to see their own writes should wrap the result in
// package consistent's view.
package gcsstore

import (
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"golang.org/x/net/context"
	"google.golang.org/api/googleapi"
	storagev1 "google.golang.org/api/storage/v1"

	"github.com/jacobsa/objstore/storage"
)

// OAuth scopes for GCS. For use with e.g. google.DefaultClient.
const (
	Scope_FullControl = storagev1.DevstorageFullControlScope
	Scope_ReadOnly    = storagev1.DevstorageReadOnlyScope
	Scope_ReadWrite   = storagev1.DevstorageReadWriteScope
)

// New opens a connection to GCS for the project with the given ID using the
// supplied HTTP client, which is assumed to handle authorization and
// authentication.
func New(projID string, client *http.Client) (s storage.Storage, err error) {
	impl := &gcsStorage{
		projID: projID,
		client: client,
	}

	s = impl

	// Create a raw service for the storagev1 package.
	if impl.rawService, err = storagev1.New(impl.client); err != nil {
		err = fmt.Errorf("storagev1.New: %v", err)
		return
	}

	return
}

type gcsStorage struct {
	projID     string
	client     *http.Client
	rawService *storagev1.Service
}

////////////////////////////////////////////////////////////////////////
// Helpers
////////////////////////////////////////////////////////////////////////

// Translate googleapi errors into this package's error taxonomy.
func mapError(err error) error {
	if typed, ok := err.(*googleapi.Error); ok {
		switch typed.Code {
		case http.StatusNotFound:
			return &storage.NotFoundError{Err: typed}

		case http.StatusPreconditionFailed:
			return &storage.PreconditionError{Err: typed}
		}
	}

	return err
}

func (g *gcsStorage) statBucket(
	ctx context.Context,
	bucketName string) (info *storage.ItemInfo, err error) {
	rawBucket, err := g.rawService.Buckets.Get(bucketName).Context(ctx).Do()
	if err != nil {
		err = mapError(err)
		return
	}

	info, err = fromRawBucket(rawBucket)
	return
}

func (g *gcsStorage) statObject(
	ctx context.Context,
	id storage.ResourceID) (info *storage.ItemInfo, err error) {
	rawObject, err := g.rawService.Objects.
		Get(id.BucketName(), id.ObjectName()).
		Projection("full").
		Context(ctx).
		Do()

	if err != nil {
		err = mapError(err)
		return
	}

	info, err = fromRawObject(id.BucketName(), rawObject)
	return
}

////////////////////////////////////////////////////////////////////////
// Storage interface
////////////////////////////////////////////////////////////////////////

func (g *gcsStorage) CreateObject(
	ctx context.Context,
	req *storage.CreateObjectRequest) (w io.WriteCloser, err error) {
	// As of 2015-02, the generated package doesn't check this for us, causing
	// silently transformed names.
	if !utf8.ValidString(req.ID.ObjectName()) {
		err = &storage.InvalidArgumentError{
			Err: fmt.Errorf("invalid object name: not valid UTF-8"),
		}

		return
	}

	call := g.rawService.Objects.Insert(
		req.ID.BucketName(),
		toRawObject(req))

	call.Projection("full")
	call.Context(ctx)

	if req.GenerationPrecondition != nil {
		call.IfGenerationMatch(*req.GenerationPrecondition)
	}

	w = newObjectWriter(call, req.ContentType)
	return
}

func (g *gcsStorage) CreateEmptyObject(
	ctx context.Context,
	req *storage.CreateObjectRequest) (err error) {
	w, err := g.CreateObject(ctx, req)
	if err != nil {
		return
	}

	err = w.Close()
	return
}

func (g *gcsStorage) CreateEmptyObjects(
	ctx context.Context,
	reqs []*storage.CreateObjectRequest) (err error) {
	// TODO(jacobsa): Batch these.
	for _, req := range reqs {
		if err = g.CreateEmptyObject(ctx, req); err != nil {
			err = fmt.Errorf("CreateEmptyObject(%s): %v", req.ID, err)
			return
		}
	}

	return
}

func (g *gcsStorage) NewReader(
	ctx context.Context,
	id storage.ResourceID) (rc io.ReadCloser, err error) {
	res, err := g.rawService.Objects.
		Get(id.BucketName(), id.ObjectName()).
		Context(ctx).
		Download()

	if err != nil {
		err = mapError(err)
		return
	}

	rc = res.Body
	return
}

func (g *gcsStorage) CreateBucket(
	ctx context.Context,
	bucketName string) (err error) {
	_, err = g.rawService.Buckets.
		Insert(g.projID, &storagev1.Bucket{Name: bucketName}).
		Context(ctx).
		Do()

	err = mapError(err)
	return
}

func (g *gcsStorage) DeleteBuckets(
	ctx context.Context,
	bucketNames []string) (err error) {
	for _, bucketName := range bucketNames {
		err = g.rawService.Buckets.Delete(bucketName).Context(ctx).Do()
		if err != nil {
			err = fmt.Errorf("Buckets.Delete(%q): %v", bucketName, mapError(err))
			return
		}
	}

	return
}

func (g *gcsStorage) DeleteObjects(
	ctx context.Context,
	ids []storage.ResourceID) (err error) {
	for _, id := range ids {
		err = g.rawService.Objects.
			Delete(id.BucketName(), id.ObjectName()).
			Context(ctx).
			Do()

		if err != nil {
			err = fmt.Errorf("Objects.Delete(%s): %v", id, mapError(err))
			return
		}
	}

	return
}

func (g *gcsStorage) CopyObjects(
	ctx context.Context,
	req *storage.CopyObjectsRequest) (err error) {
	if len(req.SrcNames) != len(req.DstNames) {
		err = &storage.InvalidArgumentError{
			Err: fmt.Errorf(
				"mismatched name counts: %d vs. %d",
				len(req.SrcNames),
				len(req.DstNames)),
		}

		return
	}

	for i, srcName := range req.SrcNames {
		_, err = g.rawService.Objects.
			Copy(req.SrcBucket, srcName, req.DstBucket, req.DstNames[i],
				&storagev1.Object{}).
			Context(ctx).
			Do()

		if err != nil {
			err = fmt.Errorf("Objects.Copy(%q): %v", srcName, mapError(err))
			return
		}
	}

	return
}

func (g *gcsStorage) ListBucketNames(
	ctx context.Context) (names []string, err error) {
	err = g.rawService.Buckets.List(g.projID).Pages(
		ctx,
		func(page *storagev1.Buckets) error {
			for _, rawBucket := range page.Items {
				names = append(names, rawBucket.Name)
			}

			return nil
		})

	if err != nil {
		err = mapError(err)
		names = nil
		return
	}

	return
}

func (g *gcsStorage) ListBucketInfo(
	ctx context.Context) (infos []*storage.ItemInfo, err error) {
	err = g.rawService.Buckets.List(g.projID).Pages(
		ctx,
		func(page *storagev1.Buckets) error {
			for _, rawBucket := range page.Items {
				info, convErr := fromRawBucket(rawBucket)
				if convErr != nil {
					return convErr
				}

				infos = append(infos, info)
			}

			return nil
		})

	if err != nil {
		err = mapError(err)
		infos = nil
		return
	}

	return
}

func (g *gcsStorage) ListObjectNames(
	ctx context.Context,
	req *storage.ListObjectsRequest) (names []string, err error) {
	call := g.rawService.Objects.List(req.Bucket)
	call.Prefix(req.Prefix)
	call.Delimiter(req.Delimiter)

	err = call.Pages(
		ctx,
		func(page *storagev1.Objects) error {
			for _, rawObject := range page.Items {
				names = append(names, rawObject.Name)
			}

			// Collapsed "directory" prefixes count as names too.
			names = append(names, page.Prefixes...)
			return nil
		})

	if err != nil {
		err = mapError(err)
		names = nil
		return
	}

	return
}

func (g *gcsStorage) ListObjectInfo(
	ctx context.Context,
	req *storage.ListObjectsRequest) (infos []*storage.ItemInfo, err error) {
	call := g.rawService.Objects.List(req.Bucket)
	call.Prefix(req.Prefix)
	call.Delimiter(req.Delimiter)
	call.Projection("full")

	err = call.Pages(
		ctx,
		func(page *storagev1.Objects) error {
			for _, rawObject := range page.Items {
				info, convErr := fromRawObject(req.Bucket, rawObject)
				if convErr != nil {
					return convErr
				}

				infos = append(infos, info)
			}

			return nil
		})

	if err != nil {
		err = mapError(err)
		infos = nil
		return
	}

	return
}

func (g *gcsStorage) StatItem(
	ctx context.Context,
	id storage.ResourceID) (info *storage.ItemInfo, err error) {
	switch {
	case id.IsRoot():
		info = &storage.ItemInfo{ID: storage.RootID}

	case id.IsBucket():
		info, err = g.statBucket(ctx, id.BucketName())

	default:
		info, err = g.statObject(ctx, id)
	}

	return
}

func (g *gcsStorage) StatItems(
	ctx context.Context,
	ids []storage.ResourceID) (infos []*storage.ItemInfo, err error) {
	// TODO(jacobsa): Batch these.
	for _, id := range ids {
		var info *storage.ItemInfo
		if info, err = g.StatItem(ctx, id); err != nil {
			infos = nil
			return
		}

		infos = append(infos, info)
	}

	return
}

func (g *gcsStorage) UpdateItems(
	ctx context.Context,
	updates []*storage.ItemUpdate) (infos []*storage.ItemInfo, err error) {
	for _, u := range updates {
		rawObject, patchErr := g.rawService.Objects.
			Patch(u.ID.BucketName(), u.ID.ObjectName(), toRawPatch(u)).
			Projection("full").
			Context(ctx).
			Do()

		if patchErr != nil {
			err = fmt.Errorf("Objects.Patch(%s): %v", u.ID, mapError(patchErr))
			infos = nil
			return
		}

		info, convErr := fromRawObject(u.ID.BucketName(), rawObject)
		if convErr != nil {
			err = convErr
			infos = nil
			return
		}

		infos = append(infos, info)
	}

	return
}

func (g *gcsStorage) WaitForBucketEmpty(
	ctx context.Context,
	bucketName string) (err error) {
	for {
		var names []string
		names, err = g.ListObjectNames(
			ctx,
			&storage.ListObjectsRequest{Bucket: bucketName})

		if err != nil {
			return
		}

		if len(names) == 0 {
			return
		}

		select {
		case <-ctx.Done():
			err = ctx.Err()
			return

		case <-time.After(time.Second):
		}
	}
}

func (g *gcsStorage) Close() (err error) {
	return
}
