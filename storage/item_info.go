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
	"time"
)

// ItemInfo is a record of metadata for a bucket or an object, as most
// recently reported by a backend. The backend is authoritative for all of
// these fields; nothing in this package attempts to keep them fresh.
type ItemInfo struct {
	// The resource the metadata describes. Always a bucket or an object ID,
	// never the root.
	ID ResourceID

	// Object size in bytes. Zero for buckets.
	Size int64

	ContentType  string
	StorageClass string

	// User-provided metadata. Nil for buckets.
	Metadata map[string]string

	// Content generation and metadata generation numbers. Zero for backends
	// that don't support generations.
	Generation     int64
	MetaGeneration int64

	Created time.Time
	Updated time.Time
}

func (info *ItemInfo) String() string {
	return fmt.Sprintf("ItemInfo(%s, gen %d)", info.ID, info.Generation)
}

// ItemUpdate describes a metadata patch for a single item, accepted by
// Storage.UpdateItems. The semantics of the pointer fields are as follows,
// for a given field F:
//
//  *  If F is set to nil, the corresponding field is untouched.
//
//  *  Otherwise, the corresponding field is set to *F.
//
type ItemUpdate struct {
	// The item to update. Must be an object ID.
	ID ResourceID

	ContentType     *string
	ContentEncoding *string
	ContentLanguage *string
	CacheControl    *string

	// User-provided metadata updates. Keys that are not mentioned are
	// untouched. Keys whose values are nil are deleted, and others are updated
	// to the supplied string.
	Metadata map[string]*string
}
