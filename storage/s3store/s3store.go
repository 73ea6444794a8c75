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

// Package s3store implements storage.Storage on top of an S3-compatible
// service, using the minio client. Like GCS, S3 listings may lag mutations;
// wrap the result in package consistent's view when read-your-writes listing
// behavior is needed.
package s3store

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/net/context"

	"github.com/jacobsa/objstore/storage"
)

// Config contains the parameters needed to connect to an S3-compatible
// endpoint.
type Config struct {
	// Host and port, e.g. "s3.amazonaws.com" or "localhost:9000".
	Endpoint string

	AccessKeyID     string
	SecretAccessKey string

	// Use TLS when talking to the endpoint.
	Secure bool

	// Region passed to bucket creation requests. May be left empty.
	Region string
}

// New opens a connection to the S3-compatible service described by the given
// config.
func New(cfg *Config) (s storage.Storage, err error) {
	client, err := minio.New(
		cfg.Endpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
			Secure: cfg.Secure,
		})

	if err != nil {
		err = fmt.Errorf("minio.New: %v", err)
		return
	}

	s = &s3Storage{
		client: client,
		region: cfg.Region,
	}

	return
}

type s3Storage struct {
	client *minio.Client
	region string
}

////////////////////////////////////////////////////////////////////////
// Helpers
////////////////////////////////////////////////////////////////////////

// Translate minio error responses into this package's error taxonomy.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return &storage.NotFoundError{Err: err}

	case "PreconditionFailed":
		return &storage.PreconditionError{Err: err}
	}

	return err
}

func fromObjectInfo(
	bucketName string,
	oi minio.ObjectInfo) (info *storage.ItemInfo, err error) {
	id, err := storage.NewObjectID(bucketName, oi.Key)
	if err != nil {
		err = fmt.Errorf("NewObjectID(%q): %v", oi.Key, err)
		return
	}

	info = &storage.ItemInfo{
		ID:           id,
		Size:         oi.Size,
		ContentType:  oi.ContentType,
		StorageClass: oi.StorageClass,
		Metadata:     map[string]string(oi.UserMetadata),
		Created:      oi.LastModified,
		Updated:      oi.LastModified,
	}

	return
}

// Drain the given listing channel, returning the object records seen. An
// error on any record aborts the listing.
func drainListing(
	ch <-chan minio.ObjectInfo) (objects []minio.ObjectInfo, err error) {
	for oi := range ch {
		if oi.Err != nil {
			err = mapError(oi.Err)
			objects = nil
			return
		}

		objects = append(objects, oi)
	}

	return
}

// List the bucket's objects, applying the request's delimiter. The minio
// client only understands "/" as a delimiter, so other delimiters are applied
// here after a recursive listing.
func (s *s3Storage) listObjects(
	ctx context.Context,
	req *storage.ListObjectsRequest) (objects []minio.ObjectInfo, err error) {
	opts := minio.ListObjectsOptions{
		Prefix:    req.Prefix,
		Recursive: req.Delimiter != "/",
	}

	objects, err = drainListing(s.client.ListObjects(ctx, req.Bucket, opts))
	if err != nil {
		return
	}

	if req.Delimiter == "" || req.Delimiter == "/" {
		return
	}

	// Collapse names containing the delimiter beyond the prefix, keeping one
	// synthetic record per collapsed run.
	var collapsed []minio.ObjectInfo
	seen := make(map[string]struct{})

	for _, oi := range objects {
		di := strings.Index(oi.Key[len(req.Prefix):], req.Delimiter)
		if di < 0 || len(req.Prefix)+di+len(req.Delimiter) == len(oi.Key) {
			collapsed = append(collapsed, oi)
			continue
		}

		dir := oi.Key[:len(req.Prefix)+di+len(req.Delimiter)]
		if _, ok := seen[dir]; ok {
			continue
		}

		seen[dir] = struct{}{}
		collapsed = append(collapsed, minio.ObjectInfo{Key: dir})
	}

	objects = collapsed
	return
}

////////////////////////////////////////////////////////////////////////
// Storage interface
////////////////////////////////////////////////////////////////////////

func (s *s3Storage) CreateObject(
	ctx context.Context,
	req *storage.CreateObjectRequest) (w io.WriteCloser, err error) {
	// S3 has no generation numbers; the only precondition this backend can
	// honor is "the object must not already exist", which PutObject cannot
	// express. Reject the others outright.
	if req.GenerationPrecondition != nil && *req.GenerationPrecondition != 0 {
		err = &storage.InvalidArgumentError{
			Err: fmt.Errorf("generation preconditions are not supported"),
		}

		return
	}

	if req.GenerationPrecondition != nil {
		_, statErr := s.client.StatObject(
			ctx,
			req.ID.BucketName(),
			req.ID.ObjectName(),
			minio.StatObjectOptions{})

		if statErr == nil {
			err = &storage.PreconditionError{
				Err: fmt.Errorf("object %s already exists", req.ID),
			}

			return
		}

		if !storage.IsNotFound(mapError(statErr)) {
			err = fmt.Errorf("StatObject: %v", mapError(statErr))
			return
		}
	}

	w = newObjectWriter(ctx, s.client, req)
	return
}

func (s *s3Storage) CreateEmptyObject(
	ctx context.Context,
	req *storage.CreateObjectRequest) (err error) {
	w, err := s.CreateObject(ctx, req)
	if err != nil {
		return
	}

	err = w.Close()
	return
}

func (s *s3Storage) CreateEmptyObjects(
	ctx context.Context,
	reqs []*storage.CreateObjectRequest) (err error) {
	for _, req := range reqs {
		if err = s.CreateEmptyObject(ctx, req); err != nil {
			err = fmt.Errorf("CreateEmptyObject(%s): %v", req.ID, err)
			return
		}
	}

	return
}

func (s *s3Storage) NewReader(
	ctx context.Context,
	id storage.ResourceID) (rc io.ReadCloser, err error) {
	obj, err := s.client.GetObject(
		ctx,
		id.BucketName(),
		id.ObjectName(),
		minio.GetObjectOptions{})

	if err != nil {
		err = mapError(err)
		return
	}

	// GetObject is lazy; force the first request so that a missing object is
	// reported here rather than on the first read.
	if _, err = obj.Stat(); err != nil {
		obj.Close()
		err = mapError(err)
		return
	}

	rc = obj
	return
}

func (s *s3Storage) CreateBucket(
	ctx context.Context,
	bucketName string) (err error) {
	err = s.client.MakeBucket(
		ctx,
		bucketName,
		minio.MakeBucketOptions{Region: s.region})

	err = mapError(err)
	return
}

func (s *s3Storage) DeleteBuckets(
	ctx context.Context,
	bucketNames []string) (err error) {
	for _, bucketName := range bucketNames {
		if err = s.client.RemoveBucket(ctx, bucketName); err != nil {
			err = fmt.Errorf("RemoveBucket(%q): %v", bucketName, mapError(err))
			return
		}
	}

	return
}

func (s *s3Storage) DeleteObjects(
	ctx context.Context,
	ids []storage.ResourceID) (err error) {
	for _, id := range ids {
		err = s.client.RemoveObject(
			ctx,
			id.BucketName(),
			id.ObjectName(),
			minio.RemoveObjectOptions{})

		if err != nil {
			err = fmt.Errorf("RemoveObject(%s): %v", id, mapError(err))
			return
		}
	}

	return
}

func (s *s3Storage) CopyObjects(
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
		_, err = s.client.CopyObject(
			ctx,
			minio.CopyDestOptions{
				Bucket: req.DstBucket,
				Object: req.DstNames[i],
			},
			minio.CopySrcOptions{
				Bucket: req.SrcBucket,
				Object: srcName,
			})

		if err != nil {
			err = fmt.Errorf("CopyObject(%q): %v", srcName, mapError(err))
			return
		}
	}

	return
}

func (s *s3Storage) ListBucketNames(
	ctx context.Context) (names []string, err error) {
	buckets, err := s.client.ListBuckets(ctx)
	if err != nil {
		err = mapError(err)
		return
	}

	for _, b := range buckets {
		names = append(names, b.Name)
	}

	return
}

func (s *s3Storage) ListBucketInfo(
	ctx context.Context) (infos []*storage.ItemInfo, err error) {
	buckets, err := s.client.ListBuckets(ctx)
	if err != nil {
		err = mapError(err)
		return
	}

	for _, b := range buckets {
		var id storage.ResourceID
		if id, err = storage.NewBucketID(b.Name); err != nil {
			err = fmt.Errorf("NewBucketID(%q): %v", b.Name, err)
			infos = nil
			return
		}

		infos = append(infos, &storage.ItemInfo{
			ID:      id,
			Created: b.CreationDate,
			Updated: b.CreationDate,
		})
	}

	return
}

func (s *s3Storage) ListObjectNames(
	ctx context.Context,
	req *storage.ListObjectsRequest) (names []string, err error) {
	objects, err := s.listObjects(ctx, req)
	if err != nil {
		return
	}

	for _, oi := range objects {
		names = append(names, oi.Key)
	}

	return
}

func (s *s3Storage) ListObjectInfo(
	ctx context.Context,
	req *storage.ListObjectsRequest) (infos []*storage.ItemInfo, err error) {
	objects, err := s.listObjects(ctx, req)
	if err != nil {
		return
	}

	for _, oi := range objects {
		// Skip collapsed "directory" results; they are names only.
		if strings.HasSuffix(oi.Key, "/") && oi.Size == 0 && oi.ETag == "" {
			continue
		}

		var info *storage.ItemInfo
		if info, err = fromObjectInfo(req.Bucket, oi); err != nil {
			infos = nil
			return
		}

		infos = append(infos, info)
	}

	return
}

func (s *s3Storage) StatItem(
	ctx context.Context,
	id storage.ResourceID) (info *storage.ItemInfo, err error) {
	switch {
	case id.IsRoot():
		info = &storage.ItemInfo{ID: storage.RootID}
		return

	case id.IsBucket():
		var exists bool
		if exists, err = s.client.BucketExists(ctx, id.BucketName()); err != nil {
			err = mapError(err)
			return
		}

		if !exists {
			err = &storage.NotFoundError{
				Err: fmt.Errorf("bucket %q does not exist", id.BucketName()),
			}

			return
		}

		info = &storage.ItemInfo{ID: id}
		return
	}

	oi, err := s.client.StatObject(
		ctx,
		id.BucketName(),
		id.ObjectName(),
		minio.StatObjectOptions{})

	if err != nil {
		err = mapError(err)
		return
	}

	info, err = fromObjectInfo(id.BucketName(), oi)
	return
}

func (s *s3Storage) StatItems(
	ctx context.Context,
	ids []storage.ResourceID) (infos []*storage.ItemInfo, err error) {
	for _, id := range ids {
		var info *storage.ItemInfo
		if info, err = s.StatItem(ctx, id); err != nil {
			infos = nil
			return
		}

		infos = append(infos, info)
	}

	return
}

func (s *s3Storage) UpdateItems(
	ctx context.Context,
	updates []*storage.ItemUpdate) (infos []*storage.ItemInfo, err error) {
	// S3 cannot patch object metadata in place. Emulate a patch by merging
	// with the current metadata and copying the object onto itself.
	for _, u := range updates {
		var current *storage.ItemInfo
		if current, err = s.StatItem(ctx, u.ID); err != nil {
			infos = nil
			return
		}

		metadata := make(map[string]string)
		for k, v := range current.Metadata {
			metadata[k] = v
		}

		for k, v := range u.Metadata {
			if v == nil {
				delete(metadata, k)
				continue
			}

			metadata[k] = *v
		}

		// The copy API accepts standard headers through the same map.
		if u.ContentType != nil {
			metadata["Content-Type"] = *u.ContentType
		}

		if u.ContentEncoding != nil {
			metadata["Content-Encoding"] = *u.ContentEncoding
		}

		if u.ContentLanguage != nil {
			metadata["Content-Language"] = *u.ContentLanguage
		}

		if u.CacheControl != nil {
			metadata["Cache-Control"] = *u.CacheControl
		}

		dst := minio.CopyDestOptions{
			Bucket:          u.ID.BucketName(),
			Object:          u.ID.ObjectName(),
			ReplaceMetadata: true,
			UserMetadata:    metadata,
		}

		_, err = s.client.CopyObject(
			ctx,
			dst,
			minio.CopySrcOptions{
				Bucket: u.ID.BucketName(),
				Object: u.ID.ObjectName(),
			})

		if err != nil {
			err = fmt.Errorf("CopyObject(%s): %v", u.ID, mapError(err))
			infos = nil
			return
		}

		var info *storage.ItemInfo
		if info, err = s.StatItem(ctx, u.ID); err != nil {
			infos = nil
			return
		}

		infos = append(infos, info)
	}

	return
}

func (s *s3Storage) WaitForBucketEmpty(
	ctx context.Context,
	bucketName string) (err error) {
	for {
		var names []string
		names, err = s.ListObjectNames(
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

func (s *s3Storage) Close() (err error) {
	return
}
