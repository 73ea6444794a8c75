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
	"fmt"
	"time"

	storagev1 "google.golang.org/api/storage/v1"

	"github.com/jacobsa/objstore/storage"
)

func toRawObject(req *storage.CreateObjectRequest) (rawObject *storagev1.Object) {
	rawObject = &storagev1.Object{
		Name:            req.ID.ObjectName(),
		ContentType:     req.ContentType,
		ContentLanguage: req.ContentLanguage,
		ContentEncoding: req.ContentEncoding,
		CacheControl:    req.CacheControl,
		Metadata:        req.Metadata,
	}

	return
}

func toRawPatch(u *storage.ItemUpdate) (rawObject *storagev1.Object) {
	rawObject = &storagev1.Object{}

	if u.ContentType != nil {
		rawObject.ContentType = *u.ContentType
		rawObject.ForceSendFields = append(rawObject.ForceSendFields, "ContentType")
	}

	if u.ContentEncoding != nil {
		rawObject.ContentEncoding = *u.ContentEncoding
		rawObject.ForceSendFields = append(
			rawObject.ForceSendFields,
			"ContentEncoding")
	}

	if u.ContentLanguage != nil {
		rawObject.ContentLanguage = *u.ContentLanguage
		rawObject.ForceSendFields = append(
			rawObject.ForceSendFields,
			"ContentLanguage")
	}

	if u.CacheControl != nil {
		rawObject.CacheControl = *u.CacheControl
		rawObject.ForceSendFields = append(rawObject.ForceSendFields, "CacheControl")
	}

	// Metadata patches merge key by key. Keys with nil values are deleted,
	// which the API expresses as explicit nulls.
	for key, value := range u.Metadata {
		if value == nil {
			rawObject.NullFields = append(rawObject.NullFields, "Metadata."+key)
			continue
		}

		if rawObject.Metadata == nil {
			rawObject.Metadata = make(map[string]string)
		}

		rawObject.Metadata[key] = *value
	}

	return
}

func fromRawBucket(
	rawBucket *storagev1.Bucket) (info *storage.ItemInfo, err error) {
	id, err := storage.NewBucketID(rawBucket.Name)
	if err != nil {
		err = fmt.Errorf("NewBucketID(%q): %v", rawBucket.Name, err)
		return
	}

	created, err := parseTimestamp(rawBucket.TimeCreated)
	if err != nil {
		err = fmt.Errorf("parsing TimeCreated: %v", err)
		return
	}

	updated, err := parseTimestamp(rawBucket.Updated)
	if err != nil {
		err = fmt.Errorf("parsing Updated: %v", err)
		return
	}

	info = &storage.ItemInfo{
		ID:             id,
		StorageClass:   rawBucket.StorageClass,
		MetaGeneration: rawBucket.Metageneration,
		Created:        created,
		Updated:        updated,
	}

	return
}

func fromRawObject(
	bucketName string,
	rawObject *storagev1.Object) (info *storage.ItemInfo, err error) {
	id, err := storage.NewObjectID(bucketName, rawObject.Name)
	if err != nil {
		err = fmt.Errorf("NewObjectID(%q): %v", rawObject.Name, err)
		return
	}

	if rawObject.Size > uint64(1)<<62 {
		err = fmt.Errorf("object size %d out of range", rawObject.Size)
		return
	}

	created, err := parseTimestamp(rawObject.TimeCreated)
	if err != nil {
		err = fmt.Errorf("parsing TimeCreated: %v", err)
		return
	}

	updated, err := parseTimestamp(rawObject.Updated)
	if err != nil {
		err = fmt.Errorf("parsing Updated: %v", err)
		return
	}

	info = &storage.ItemInfo{
		ID:             id,
		Size:           int64(rawObject.Size),
		ContentType:    rawObject.ContentType,
		StorageClass:   rawObject.StorageClass,
		Metadata:       rawObject.Metadata,
		Generation:     rawObject.Generation,
		MetaGeneration: rawObject.Metageneration,
		Created:        created,
		Updated:        updated,
	}

	return
}

// The API returns timestamps in RFC 3339 format, with an empty string meaning
// "not present".
func parseTimestamp(s string) (t time.Time, err error) {
	if s == "" {
		return
	}

	t, err = time.Parse(time.RFC3339, s)
	return
}
