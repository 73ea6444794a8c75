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
	"strings"
)

// The delimiter used to separate the components of "directory-like" object
// names, and appended to object names that represent directory placeholders.
const PathDelimiter = "/"

// ResourceID identifies the storage root (root://), a bucket, or an object
// within a bucket. If both the bucket name and the object name are empty, the
// ResourceID refers to the root. If the bucket name is non-empty and the
// object name is empty, it refers to a bucket. Otherwise it refers to an
// object.
//
// ResourceID is a comparable value type: == on two ResourceIDs matches
// equality of their (bucket, object) pairs, so a ResourceID may be used
// directly as a map key. The zero value is RootID.
type ResourceID struct {
	bucketName string
	objectName string

	// The canonical string returned by String. Derived from the other fields at
	// construction time so that rendering is cheap; always consistent with
	// them, so it doesn't perturb equality.
	readable string
}

// RootID is the ResourceID identifying the storage root. It is the zero
// value of ResourceID.
var RootID = ResourceID{}

// NewBucketID returns a ResourceID representing the bucket with the given
// name, which must be non-empty.
func NewBucketID(bucketName string) (id ResourceID, err error) {
	if bucketName == "" {
		err = &InvalidArgumentError{
			fmt.Errorf("bucket name must be non-empty"),
		}
		return
	}

	id = ResourceID{
		bucketName: bucketName,
		readable:   readableString(bucketName, ""),
	}

	return
}

// NewObjectID returns a ResourceID representing the object with the given
// name within the given bucket. Both names must be non-empty.
func NewObjectID(bucketName string, objectName string) (
	id ResourceID, err error) {
	if bucketName == "" {
		err = &InvalidArgumentError{
			fmt.Errorf("bucket name must be non-empty for object %q", objectName),
		}
		return
	}

	if objectName == "" {
		err = &InvalidArgumentError{
			fmt.Errorf("object name must be non-empty"),
		}
		return
	}

	id = ResourceID{
		bucketName: bucketName,
		objectName: objectName,
		readable:   readableString(bucketName, objectName),
	}

	return
}

// BucketName returns the bucket name component, or the empty string for the
// root.
func (id ResourceID) BucketName() string {
	return id.bucketName
}

// ObjectName returns the object name component, or the empty string for the
// root or a bucket.
func (id ResourceID) ObjectName() string {
	return id.objectName
}

// IsRoot returns true if the ResourceID represents the storage root.
func (id ResourceID) IsRoot() bool {
	return id.bucketName == "" && id.objectName == ""
}

// IsBucket returns true if the ResourceID represents a bucket.
func (id ResourceID) IsBucket() bool {
	return id.bucketName != "" && id.objectName == ""
}

// IsStorageObject returns true if the ResourceID represents an object within
// a bucket.
func (id ResourceID) IsStorageObject() bool {
	return id.bucketName != "" && id.objectName != ""
}

// IsDirectory returns true if the ResourceID names something directory-like:
// the root, a bucket, or an object whose name ends in PathDelimiter. It deals
// entirely in names; it says nothing about whether the resource exists.
func (id ResourceID) IsDirectory() bool {
	return id.IsRoot() || id.IsBucket() || objectHasDirectoryPath(id.objectName)
}

// String returns the canonical form root://, root://bucket, or
// root://bucket/object. Callers may rely on this exact format for logging,
// but should use the accessors rather than parsing it.
func (id ResourceID) String() string {
	// The zero value hasn't been through a constructor, so its readable string
	// may be missing.
	if id.readable == "" {
		return readableString(id.bucketName, id.objectName)
	}

	return id.readable
}

func readableString(bucketName string, objectName string) string {
	switch {
	case bucketName == "" && objectName == "":
		return "root://"

	case objectName == "":
		return fmt.Sprintf("root://%s", bucketName)

	default:
		return fmt.Sprintf("root://%s/%s", bucketName, objectName)
	}
}

func objectHasDirectoryPath(objectName string) bool {
	return objectName != "" && strings.HasSuffix(objectName, PathDelimiter)
}
