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

// Package consistent repairs the eventual consistency of object storage
// "list" operations for a single client: a decorator records every resource
// the client creates, copies, or deletes in a DirectoryListCache, and
// supplements backend listings from the cache so that the client always
// observes its own prior writes.
package consistent

import (
	"fmt"
	"io"

	"golang.org/x/net/context"

	"github.com/jacobsa/objstore/storage"
)

// NewView creates a storage.Storage that forwards all calls to the supplied
// Storage, adding bookkeeping around them: every mutating call updates the
// supplied cache after the delegate succeeds, and every listing call is
// supplemented with cached resources the delegate's (possibly
// eventually-consistent) listing index hasn't reflected yet.
//
// The guarantee is same-client consistency only: a listing issued after a
// mutation through the same view reflects that mutation. Nothing is promised
// about mutations made by other processes, and a deletion made by another
// process may keep appearing in backend listings for a while; the view does
// not suppress such stale results.
//
// The view assumes exclusive ownership of the cache.
func NewView(
	cache DirectoryListCache,
	wrapped storage.Storage) storage.Storage {
	return &view{
		cache:   cache,
		wrapped: wrapped,
	}
}

type view struct {
	cache   DirectoryListCache
	wrapped storage.Storage
}

// An io.WriteCloser that records its object in the cache when the write
// completes. The object is not known created until Close succeeds, so the
// bookkeeping is deferred until then.
type recordingWriter struct {
	id      storage.ResourceID
	cache   DirectoryListCache
	wrapped io.WriteCloser
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	return w.wrapped.Write(p)
}

func (w *recordingWriter) Close() (err error) {
	err = w.wrapped.Close()
	if err != nil {
		return
	}

	w.cache.PutResourceID(w.id)
	return
}

////////////////////////////////////////////////////////////////////////
// Helpers
////////////////////////////////////////////////////////////////////////

// Filter candidateEntries down to the entries whose IDs are not in
// originalIDs, adding the IDs of the survivors to originalIDs as it goes.
// Entries already represented in the delegate's result are dropped, never
// duplicated; the delegate is authoritative for them.
func supplementalEntries(
	originalIDs map[storage.ResourceID]struct{},
	candidateEntries []*CacheEntry) (supplemental []*CacheEntry) {
	for _, entry := range candidateEntries {
		id := entry.ResourceID()
		if _, ok := originalIDs[id]; !ok {
			supplemental = append(supplemental, entry)
			originalIDs[id] = struct{}{}
		}
	}

	return
}

// For each entry, pull its metadata if already attached, or fetch it from the
// delegate on demand and attach it. An entry whose fetch reports the resource
// gone is silently omitted: it means the cache is stale relative to a
// deletion, which is expected and self-correcting, not an error.
func (v *view) extractItemInfos(
	ctx context.Context,
	entries []*CacheEntry) (infos []*storage.ItemInfo, err error) {
	// TODO(jacobsa): Batch the fetches via StatItems.
	for _, entry := range entries {
		info := entry.ItemInfo()
		if info == nil {
			info, err = v.wrapped.StatItem(ctx, entry.ResourceID())
			if err != nil {
				if storage.IsNotFound(err) {
					err = nil
					continue
				}

				err = fmt.Errorf("StatItem(%s): %v", entry.ResourceID(), err)
				return
			}

			entry.SetItemInfo(info)
		}

		infos = append(infos, info)
	}

	return
}

// Convert a list of object names, as returned by a delegate listing for the
// given bucket, into a set of IDs. Collapsed "directory" prefixes count too;
// they dedup against directory placeholder entries in the cache.
func objectIDSet(
	bucket string,
	names []string) map[storage.ResourceID]struct{} {
	ids := make(map[storage.ResourceID]struct{}, len(names))
	for _, name := range names {
		id, err := storage.NewObjectID(bucket, name)
		if err != nil {
			// An unidentifiable name can't collide with a cache entry; ignore it.
			continue
		}

		ids[id] = struct{}{}
	}

	return ids
}

////////////////////////////////////////////////////////////////////////
// Mutating methods
////////////////////////////////////////////////////////////////////////

// Wraps the delegate's returned writer in a helper that updates the cache
// when Close is called.
func (v *view) CreateObject(
	ctx context.Context,
	req *storage.CreateObjectRequest) (w io.WriteCloser, err error) {
	inner, err := v.wrapped.CreateObject(ctx, req)
	if err != nil {
		return
	}

	w = &recordingWriter{
		id:      req.ID,
		cache:   v.cache,
		wrapped: inner,
	}

	return
}

// Records the resource ID after delegating.
func (v *view) CreateEmptyObject(
	ctx context.Context,
	req *storage.CreateObjectRequest) (err error) {
	err = v.wrapped.CreateEmptyObject(ctx, req)
	if err != nil {
		return
	}

	v.cache.PutResourceID(req.ID)
	return
}

// Records the resource IDs after delegating.
func (v *view) CreateEmptyObjects(
	ctx context.Context,
	reqs []*storage.CreateObjectRequest) (err error) {
	err = v.wrapped.CreateEmptyObjects(ctx, reqs)
	if err != nil {
		return
	}

	for _, req := range reqs {
		v.cache.PutResourceID(req.ID)
	}

	return
}

// Records the bucket after delegating.
func (v *view) CreateBucket(
	ctx context.Context,
	bucketName string) (err error) {
	id, err := storage.NewBucketID(bucketName)
	if err != nil {
		return
	}

	err = v.wrapped.CreateBucket(ctx, bucketName)
	if err != nil {
		return
	}

	v.cache.PutResourceID(id)
	return
}

// Removes the buckets from the cache whether or not the delegate reports each
// as having pre-existed; afterward they are simply no longer known-created.
func (v *view) DeleteBuckets(
	ctx context.Context,
	bucketNames []string) (err error) {
	// TODO(jacobsa): Consider recording a timestamped tombstone here instead,
	// so that stale backend listings of an already-deleted bucket could be
	// clobbered too. For now deletions by this client may keep appearing in
	// listings until the backend index catches up.
	err = v.wrapped.DeleteBuckets(ctx, bucketNames)
	if err != nil {
		return
	}

	for _, bucketName := range bucketNames {
		id, idErr := storage.NewBucketID(bucketName)
		if idErr != nil {
			continue
		}

		v.cache.RemoveResourceID(id)
	}

	return
}

// Removes the objects from the cache, if present.
func (v *view) DeleteObjects(
	ctx context.Context,
	ids []storage.ResourceID) (err error) {
	err = v.wrapped.DeleteObjects(ctx, ids)
	if err != nil {
		return
	}

	for _, id := range ids {
		v.cache.RemoveResourceID(id)
	}

	return
}

// Records the destination IDs after delegating, without metadata; listings
// that need it will populate it on demand. The cache learns nothing about the
// sources.
func (v *view) CopyObjects(
	ctx context.Context,
	req *storage.CopyObjectsRequest) (err error) {
	err = v.wrapped.CopyObjects(ctx, req)
	if err != nil {
		return
	}

	for _, dstName := range req.DstNames {
		id, idErr := storage.NewObjectID(req.DstBucket, dstName)
		if idErr != nil {
			continue
		}

		v.cache.PutResourceID(id)
	}

	return
}

////////////////////////////////////////////////////////////////////////
// Listing methods
////////////////////////////////////////////////////////////////////////

// Supplements the delegate's result with cached bucket names; won't trigger
// any fetching of metadata.
func (v *view) ListBucketNames(
	ctx context.Context) (names []string, err error) {
	names, err = v.wrapped.ListBucketNames(ctx)
	if err != nil {
		return
	}

	cachedBuckets := v.cache.BucketList()
	if len(cachedBuckets) == 0 {
		return
	}

	ids := make(map[storage.ResourceID]struct{}, len(names))
	for _, name := range names {
		id, idErr := storage.NewBucketID(name)
		if idErr != nil {
			continue
		}

		ids[id] = struct{}{}
	}

	// Copy before appending so that the delegate's slice is left untouched.
	all := make([]string, len(names), len(names)+len(cachedBuckets))
	copy(all, names)

	for _, entry := range supplementalEntries(ids, cachedBuckets) {
		all = append(all, entry.ResourceID().BucketName())
	}

	names = all
	return
}

// Supplements the delegate's result with cached bucket metadata, fetching any
// metadata not already attached to the cache on demand.
func (v *view) ListBucketInfo(
	ctx context.Context) (infos []*storage.ItemInfo, err error) {
	infos, err = v.wrapped.ListBucketInfo(ctx)
	if err != nil {
		return
	}

	cachedBuckets := v.cache.BucketList()
	if len(cachedBuckets) == 0 {
		return
	}

	ids := make(map[storage.ResourceID]struct{}, len(infos))
	for _, info := range infos {
		ids[info.ID] = struct{}{}
	}

	supplementalInfos, err := v.extractItemInfos(
		ctx,
		supplementalEntries(ids, cachedBuckets))

	if err != nil {
		return
	}

	all := make([]*storage.ItemInfo, len(infos), len(infos)+len(supplementalInfos))
	copy(all, infos)
	all = append(all, supplementalInfos...)

	infos = all
	return
}

// Supplements the delegate's result with cached object names; won't trigger
// any fetching of metadata.
func (v *view) ListObjectNames(
	ctx context.Context,
	req *storage.ListObjectsRequest) (names []string, err error) {
	names, err = v.wrapped.ListObjectNames(ctx, req)
	if err != nil {
		return
	}

	cachedObjects := v.cache.ObjectList(
		req.Bucket,
		req.Prefix,
		req.Delimiter,
		"")

	if len(cachedObjects) == 0 {
		return
	}

	ids := objectIDSet(req.Bucket, names)

	all := make([]string, len(names), len(names)+len(cachedObjects))
	copy(all, names)

	for _, entry := range supplementalEntries(ids, cachedObjects) {
		all = append(all, entry.ResourceID().ObjectName())
	}

	names = all
	return
}

// Supplements the delegate's result with cached object metadata, fetching any
// metadata not already attached to the cache on demand.
func (v *view) ListObjectInfo(
	ctx context.Context,
	req *storage.ListObjectsRequest) (infos []*storage.ItemInfo, err error) {
	infos, err = v.wrapped.ListObjectInfo(ctx, req)
	if err != nil {
		return
	}

	cachedObjects := v.cache.ObjectList(
		req.Bucket,
		req.Prefix,
		req.Delimiter,
		"")

	if len(cachedObjects) == 0 {
		return
	}

	ids := make(map[storage.ResourceID]struct{}, len(infos))
	for _, info := range infos {
		ids[info.ID] = struct{}{}
	}

	supplementalInfos, err := v.extractItemInfos(
		ctx,
		supplementalEntries(ids, cachedObjects))

	if err != nil {
		return
	}

	all := make([]*storage.ItemInfo, len(infos), len(infos)+len(supplementalInfos))
	copy(all, infos)
	all = append(all, supplementalInfos...)

	infos = all
	return
}

////////////////////////////////////////////////////////////////////////
// Pass-through methods
////////////////////////////////////////////////////////////////////////

func (v *view) NewReader(
	ctx context.Context,
	id storage.ResourceID) (rc io.ReadCloser, err error) {
	rc, err = v.wrapped.NewReader(ctx, id)
	return
}

func (v *view) StatItem(
	ctx context.Context,
	id storage.ResourceID) (info *storage.ItemInfo, err error) {
	// TODO(jacobsa): Consider opportunistically attaching the retrieved info to
	// any cache entry for this ID. It would cost memory but improve coherence.
	// Here and in StatItems.
	info, err = v.wrapped.StatItem(ctx, id)
	return
}

func (v *view) StatItems(
	ctx context.Context,
	ids []storage.ResourceID) (infos []*storage.ItemInfo, err error) {
	infos, err = v.wrapped.StatItems(ctx, ids)
	return
}

func (v *view) UpdateItems(
	ctx context.Context,
	updates []*storage.ItemUpdate) (infos []*storage.ItemInfo, err error) {
	infos, err = v.wrapped.UpdateItems(ctx, updates)
	return
}

func (v *view) WaitForBucketEmpty(
	ctx context.Context,
	bucketName string) (err error) {
	err = v.wrapped.WaitForBucketEmpty(ctx, bucketName)
	return
}

func (v *view) Close() (err error) {
	err = v.wrapped.Close()
	return
}
