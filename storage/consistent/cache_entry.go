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

package consistent

import (
	"fmt"
	"sync"
	"time"

	"github.com/jacobsa/objstore/storage"
)

// A CacheEntry records a single resource known to exist, along with its
// metadata once some read path has needed it. The resource ID is fixed at
// creation; the metadata is populated lazily, at most once meaningfully,
// always describing the same resource.
//
// Safe for concurrent access.
type CacheEntry struct {
	id storage.ResourceID

	// Set by the owning cache; the zero value means the entry never expires.
	expiration time.Time

	mu sync.Mutex

	// GUARDED_BY(mu)
	info *storage.ItemInfo
}

// NewCacheEntry creates an entry for the given resource with no metadata
// attached.
func NewCacheEntry(id storage.ResourceID) *CacheEntry {
	return &CacheEntry{
		id: id,
	}
}

// ResourceID returns the resource the entry records.
func (e *CacheEntry) ResourceID() storage.ResourceID {
	return e.id
}

// ItemInfo returns the metadata attached to the entry, or nil if none has
// been attached yet.
func (e *CacheEntry) ItemInfo() (info *storage.ItemInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()

	info = e.info
	return
}

// SetItemInfo attaches metadata to the entry. The metadata must describe the
// entry's resource.
func (e *CacheEntry) SetItemInfo(info *storage.ItemInfo) {
	if info == nil {
		panic("SetItemInfo called with nil info.")
	}

	if info.ID != e.id {
		panic(fmt.Sprintf(
			"SetItemInfo: info for %s doesn't match entry for %s",
			info.ID,
			e.id))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.info = info
}

func (e *CacheEntry) expired(now time.Time) bool {
	return !e.expiration.IsZero() && now.After(e.expiration)
}
