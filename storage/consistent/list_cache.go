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
	"sort"
	"strings"
	"time"

	"github.com/jacobsa/syncutil"
	"github.com/jacobsa/timeutil"

	"github.com/jacobsa/objstore/storage"
)

// A DirectoryListCache is a bookkeeping index of buckets and objects known to
// exist because the current process created them (or knows of their
// deletion). The view in this package records every resource it mutates here,
// and supplements backend listings from it, so that a client always sees its
// own writes in its own listings regardless of how stale the backend's
// listing index is.
//
// The cache holds names, not authoritative metadata: metadata is attached to
// entries only as read paths fetch it on demand, and the backend remains
// authoritative for it.
//
// Implementations must be safe for concurrent access.
type DirectoryListCache interface {
	// PutResourceID idempotently records the given bucket or object as known
	// to exist. If an entry already exists, its metadata is left untouched but
	// its lifetime is renewed. Recording an object implicitly records its
	// bucket.
	//
	// The ID must not be the root.
	PutResourceID(id storage.ResourceID)

	// RemoveResourceID removes the entry for the given ID, if any. Removing a
	// bucket removes all of its objects' entries as well.
	RemoveResourceID(id storage.ResourceID)

	// BucketList returns an entry for every bucket currently recorded.
	BucketList() []*CacheEntry

	// ObjectList returns an entry for every object currently recorded in the
	// given bucket whose name begins with prefix, collapsed in the
	// directory-style manner described on storage.ListObjectsRequest: names
	// that continue past the next occurrence of delimiter are omitted. In
	// normal operation this loses nothing, since the cache also holds the
	// directory placeholder objects recorded alongside such names.
	//
	// pageToken is reserved for future pagination and is currently ignored;
	// the complete matching set is returned in one call.
	ObjectList(
		bucket string,
		prefix string,
		delimiter string,
		pageToken string) []*CacheEntry

	// CheckInvariants panics if any internal invariant is violated. For use in
	// tests.
	CheckInvariants()
}

// DefaultCacheTTL is a reasonable entry lifetime for callers without more
// specific needs, comfortably longer than backend listing indexes typically
// take to converge.
const DefaultCacheTTL = 4 * time.Hour

// NewDirectoryListCache creates an empty cache whose entries expire ttl after
// they are recorded, as judged by the supplied clock. A ttl of zero disables
// expiry; such a cache grows without bound as distinct resources are
// recorded.
func NewDirectoryListCache(
	ttl time.Duration,
	clock timeutil.Clock) DirectoryListCache {
	lc := &listCache{
		ttl:     ttl,
		clock:   clock,
		buckets: make(map[string]*cachedBucket),
	}

	lc.mu = syncutil.NewInvariantMutex(lc.checkInvariants)

	return lc
}

////////////////////////////////////////////////////////////////////////
// Implementation
////////////////////////////////////////////////////////////////////////

// A single recorded bucket, together with its recorded objects. Object names
// are kept sorted so that prefix queries are range scans rather than full
// scans.
type cachedBucket struct {
	entry *CacheEntry

	// INVARIANT: Sorted and duplicate-free.
	//
	// INVARIANT: Contains exactly the keys of objects.
	names []string

	// INVARIANT: For each k, v: v.ResourceID().ObjectName() == k
	objects map[string]*CacheEntry
}

// Insert the supplied entry, overwriting any entry for the same name.
func (cb *cachedBucket) insert(name string, entry *CacheEntry) {
	if _, ok := cb.objects[name]; !ok {
		i := sort.SearchStrings(cb.names, name)
		cb.names = append(cb.names, "")
		copy(cb.names[i+1:], cb.names[i:])
		cb.names[i] = name
	}

	cb.objects[name] = entry
}

func (cb *cachedBucket) remove(name string) {
	if _, ok := cb.objects[name]; !ok {
		return
	}

	delete(cb.objects, name)

	i := sort.SearchStrings(cb.names, name)
	cb.names = append(cb.names[:i], cb.names[i+1:]...)
}

type listCache struct {
	mu syncutil.InvariantMutex

	/////////////////////////
	// Constant data
	/////////////////////////

	ttl   time.Duration
	clock timeutil.Clock

	/////////////////////////
	// Mutable state
	/////////////////////////

	// INVARIANT: For each k, v: v.entry.ResourceID().BucketName() == k
	//
	// GUARDED_BY(mu)
	buckets map[string]*cachedBucket
}

// LOCKS_REQUIRED(lc.mu)
func (lc *listCache) checkInvariants() {
	for bucketName, cb := range lc.buckets {
		if got := cb.entry.ResourceID().BucketName(); got != bucketName {
			panic(fmt.Sprintf(
				"Bucket entry mismatch: %q vs. %q", got, bucketName))
		}

		if !cb.entry.ResourceID().IsBucket() {
			panic(fmt.Sprintf(
				"Non-bucket entry for bucket: %s", cb.entry.ResourceID()))
		}

		if !sort.StringsAreSorted(cb.names) {
			panic(fmt.Sprintf("Names unsorted for bucket %q", bucketName))
		}

		if len(cb.names) != len(cb.objects) {
			panic(fmt.Sprintf(
				"Length mismatch for bucket %q: %d vs. %d",
				bucketName,
				len(cb.names),
				len(cb.objects)))
		}

		for i, name := range cb.names {
			if i > 0 && cb.names[i-1] == name {
				panic(fmt.Sprintf("Duplicate name %q in bucket %q", name, bucketName))
			}

			entry, ok := cb.objects[name]
			if !ok {
				panic(fmt.Sprintf("Name %q missing from objects map", name))
			}

			if entry.ResourceID().ObjectName() != name {
				panic(fmt.Sprintf(
					"Object entry mismatch: %s vs. %q",
					entry.ResourceID(),
					name))
			}
		}
	}
}

// Make an expiration time for an entry recorded now.
func (lc *listCache) expiration(now time.Time) (t time.Time) {
	if lc.ttl > 0 {
		t = now.Add(lc.ttl)
	}

	return
}

// Find the record for the given bucket, creating it if necessary.
//
// LOCKS_REQUIRED(lc.mu)
func (lc *listCache) lookUpOrCreateBucket(
	bucketName string,
	now time.Time) (cb *cachedBucket) {
	cb, ok := lc.buckets[bucketName]
	if ok {
		return
	}

	bucketID, err := storage.NewBucketID(bucketName)
	if err != nil {
		panic(fmt.Sprintf("NewBucketID(%q): %v", bucketName, err))
	}

	entry := NewCacheEntry(bucketID)
	entry.expiration = lc.expiration(now)

	cb = &cachedBucket{
		entry:   entry,
		objects: make(map[string]*CacheEntry),
	}

	lc.buckets[bucketName] = cb
	return
}

////////////////////////////////////////////////////////////////////////
// DirectoryListCache interface
////////////////////////////////////////////////////////////////////////

// LOCKS_EXCLUDED(lc.mu)
func (lc *listCache) PutResourceID(id storage.ResourceID) {
	if id.IsRoot() {
		panic("PutResourceID called with the root ID.")
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	now := lc.clock.Now()
	cb := lc.lookUpOrCreateBucket(id.BucketName(), now)

	// Recording a bucket (explicitly or implicitly via one of its objects)
	// renews it.
	cb.entry.expiration = lc.expiration(now)

	if id.IsBucket() {
		return
	}

	// Renew rather than replace an existing object entry, so that metadata
	// attached to it survives.
	if existing, ok := cb.objects[id.ObjectName()]; ok {
		existing.expiration = lc.expiration(now)
		return
	}

	entry := NewCacheEntry(id)
	entry.expiration = lc.expiration(now)
	cb.insert(id.ObjectName(), entry)
}

// LOCKS_EXCLUDED(lc.mu)
func (lc *listCache) RemoveResourceID(id storage.ResourceID) {
	if id.IsRoot() {
		panic("RemoveResourceID called with the root ID.")
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	cb, ok := lc.buckets[id.BucketName()]
	if !ok {
		return
	}

	if id.IsBucket() {
		delete(lc.buckets, id.BucketName())
		return
	}

	cb.remove(id.ObjectName())
}

// LOCKS_EXCLUDED(lc.mu)
func (lc *listCache) BucketList() (entries []*CacheEntry) {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	now := lc.clock.Now()
	for bucketName, cb := range lc.buckets {
		if cb.entry.expired(now) {
			// An expired bucket may still be carrying live object entries; those
			// keep the record alive until they are gone too.
			if len(cb.objects) == 0 {
				delete(lc.buckets, bucketName)
			}

			continue
		}

		entries = append(entries, cb.entry)
	}

	return
}

// LOCKS_EXCLUDED(lc.mu)
func (lc *listCache) ObjectList(
	bucket string,
	prefix string,
	delimiter string,
	pageToken string) (entries []*CacheEntry) {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	cb, ok := lc.buckets[bucket]
	if !ok {
		return
	}

	now := lc.clock.Now()

	// Scan the range of names beginning with the prefix.
	var expired []string
	for i := sort.SearchStrings(cb.names, prefix); i < len(cb.names); i++ {
		name := cb.names[i]
		if !strings.HasPrefix(name, prefix) {
			break
		}

		entry := cb.objects[name]
		if entry.expired(now) {
			expired = append(expired, name)
			continue
		}

		// Collapse at the delimiter: a name that continues past the first
		// occurrence of the delimiter beyond the prefix belongs to a
		// "subdirectory" and is not returned directly. A name that merely ends
		// with the delimiter is a directory placeholder and is returned.
		if delimiter != "" {
			di := strings.Index(name[len(prefix):], delimiter)
			if di >= 0 && len(prefix)+di+len(delimiter) != len(name) {
				continue
			}
		}

		entries = append(entries, entry)
	}

	for _, name := range expired {
		cb.remove(name)
	}

	return
}

// LOCKS_EXCLUDED(lc.mu)
func (lc *listCache) CheckInvariants() {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	lc.checkInvariants()
}
