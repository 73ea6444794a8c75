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

// Package storage defines a backend-neutral interface for object storage
// services, along with the identifier and metadata types shared by its
// implementations and decorators.
package storage

import (
	"io"

	"golang.org/x/net/context"
)

// A request to create an object, accepted by Storage.CreateObject and
// Storage.CreateEmptyObject(s).
type CreateObjectRequest struct {
	// The object to create. Must be an object ID.
	ID ResourceID

	// Optional attributes with which the object should be created. Zero-valued
	// fields are ignored.
	ContentType     string
	ContentLanguage string
	ContentEncoding string
	CacheControl    string
	Metadata        map[string]string

	// If non-nil, the object will be created/overwritten only if the current
	// generation for the object name is equal to the given value. Zero means
	// the object does not exist.
	GenerationPrecondition *int64
}

// A request to copy a batch of objects, accepted by Storage.CopyObjects. The
// i'th source object is copied to the i'th destination name; the two name
// slices must be of equal length.
type CopyObjectsRequest struct {
	SrcBucket string
	SrcNames  []string

	DstBucket string
	DstNames  []string
}

// A request to list the objects of a bucket, accepted by
// Storage.ListObjectNames and Storage.ListObjectInfo.
type ListObjectsRequest struct {
	// The bucket whose objects to list. Must be non-empty.
	Bucket string

	// Restrict results to object names that begin with this prefix. The empty
	// string means no restriction.
	Prefix string

	// If non-empty, collapse all object names that contain this string beyond
	// the prefix into a single "directory" result ending just after its first
	// occurrence, emulating a directory listing.
	Delimiter string
}

// Storage is a connection to an object storage service: a flat namespace of
// buckets, each a flat namespace of objects. Implementations wrap particular
// backends; decorators wrap other Storage implementations to add behavior.
//
// Each method that may block accepts a context that is used for deadlines and
// cancellation.
//
// Methods that look up a particular resource return a *NotFoundError when the
// backend reports that the resource does not exist, distinguishably from
// transport and other failures. List methods reflect only the backend's
// (possibly eventually-consistent) listing index; see package consistent for
// a decorator that repairs this for a single client.
type Storage interface {
	// Create an object with the attributes given in the request, returning a
	// writer for its contents. The object is not visible, and any previous
	// object with the same name is not overwritten, until the writer is
	// closed successfully.
	CreateObject(
		ctx context.Context,
		req *CreateObjectRequest) (io.WriteCloser, error)

	// Create an object with the attributes given in the request and empty
	// contents. The object exists once this method returns nil.
	CreateEmptyObject(
		ctx context.Context,
		req *CreateObjectRequest) error

	// Like CreateEmptyObject, for a batch of objects. There is no atomicity
	// guarantee: on error, any subset of the objects may have been created.
	CreateEmptyObjects(
		ctx context.Context,
		reqs []*CreateObjectRequest) error

	// Create a reader for the contents of the object with the given ID. The
	// caller must arrange for the reader to be closed when it is no longer
	// needed.
	NewReader(
		ctx context.Context,
		id ResourceID) (io.ReadCloser, error)

	// Create a bucket with the given name.
	CreateBucket(ctx context.Context, bucketName string) error

	// Delete the buckets with the given names, which must be empty.
	DeleteBuckets(ctx context.Context, bucketNames []string) error

	// Delete the objects with the given IDs.
	DeleteObjects(ctx context.Context, ids []ResourceID) error

	// Copy each source object to the corresponding destination name. Only the
	// destination objects are affected.
	CopyObjects(ctx context.Context, req *CopyObjectsRequest) error

	// Return the names of all buckets visible to this connection.
	ListBucketNames(ctx context.Context) ([]string, error)

	// Return metadata for all buckets visible to this connection.
	ListBucketInfo(ctx context.Context) ([]*ItemInfo, error)

	// Return the names of objects matching the request, in the directory-style
	// manner described on ListObjectsRequest. Collapsed "directory" prefixes
	// are included among the returned names.
	ListObjectNames(
		ctx context.Context,
		req *ListObjectsRequest) ([]string, error)

	// Return metadata for the objects matching the request. Collapsed
	// "directory" prefixes are not represented, since they have no metadata.
	ListObjectInfo(
		ctx context.Context,
		req *ListObjectsRequest) ([]*ItemInfo, error)

	// Return metadata for the bucket or object with the given ID.
	StatItem(ctx context.Context, id ResourceID) (*ItemInfo, error)

	// Like StatItem, for a batch of IDs. The i'th info corresponds to the i'th
	// ID.
	StatItems(ctx context.Context, ids []ResourceID) ([]*ItemInfo, error)

	// Apply the supplied metadata patches, returning the resulting metadata in
	// matching order.
	UpdateItems(
		ctx context.Context,
		updates []*ItemUpdate) ([]*ItemInfo, error)

	// Block until the backend's listing index reports the given bucket as
	// empty, or the context is cancelled.
	WaitForBucketEmpty(ctx context.Context, bucketName string) error

	// Release any resources held by the connection. The Storage must not be
	// used afterward.
	Close() error
}
