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

// Package storagefake provides an in-memory implementation of
// storage.Storage for use in tests, including a switch that simulates an
// eventually-consistent listing index.
package storagefake

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/context"

	"github.com/jacobsa/syncutil"
	"github.com/jacobsa/timeutil"

	"github.com/jacobsa/objstore/storage"
)

// Fake is an in-memory storage service, plus knobs for tests.
type Fake interface {
	storage.Storage

	// SetListingLagged controls whether the fake's listing index keeps up with
	// mutations. While lagged, resources created afterward do not appear in
	// list results (though they are visible to StatItem and NewReader), and
	// resources deleted afterward keep appearing in them. This simulates the
	// eventual consistency that package consistent exists to repair.
	SetListingLagged(lagged bool)
}

// NewFake creates an empty in-memory storage service. The supplied clock will
// be used for generating timestamps.
func NewFake(clock timeutil.Clock) Fake {
	f := &fakeStorage{
		clock:   clock,
		buckets: make(map[string]*fakeBucket),
	}

	f.mu = syncutil.NewInvariantMutex(f.checkInvariants)

	return f
}

////////////////////////////////////////////////////////////////////////
// Implementation
////////////////////////////////////////////////////////////////////////

type fakeObject struct {
	info     *storage.ItemInfo
	contents []byte

	// Whether the listing index reflects this object.
	inListing bool

	// Set when the object has been deleted but the lagged listing index still
	// returns it.
	//
	// INVARIANT: If deleted, then inListing.
	deleted bool
}

type fakeBucket struct {
	info      *storage.ItemInfo
	inListing bool
	deleted   bool

	// INVARIANT: For each k, v: v.info.ID.ObjectName() == k
	objects map[string]*fakeObject
}

type fakeStorage struct {
	clock timeutil.Clock

	mu syncutil.InvariantMutex

	// INVARIANT: For each k, v: v.info.ID.BucketName() == k
	//
	// GUARDED_BY(mu)
	buckets map[string]*fakeBucket

	// GUARDED_BY(mu)
	lagged bool

	// GUARDED_BY(mu)
	nextGeneration int64

	// GUARDED_BY(mu)
	closed bool
}

// LOCKS_REQUIRED(f.mu)
func (f *fakeStorage) checkInvariants() {
	for bucketName, b := range f.buckets {
		if b.info.ID.BucketName() != bucketName {
			panic(fmt.Sprintf(
				"Bucket ID mismatch: %s vs. %q", b.info.ID, bucketName))
		}

		if b.deleted && !b.inListing {
			panic(fmt.Sprintf("Deleted bucket %q not in listing", bucketName))
		}

		for objectName, o := range b.objects {
			if o.info.ID.ObjectName() != objectName {
				panic(fmt.Sprintf(
					"Object ID mismatch: %s vs. %q", o.info.ID, objectName))
			}

			if o.deleted && !o.inListing {
				panic(fmt.Sprintf("Deleted object %s not in listing", o.info.ID))
			}
		}
	}
}

// LOCKS_REQUIRED(f.mu)
func (f *fakeStorage) checkOpen() {
	if f.closed {
		panic("Call into fake storage after Close.")
	}
}

// LOCKS_REQUIRED(f.mu)
func (f *fakeStorage) mintGeneration() int64 {
	f.nextGeneration++
	return f.nextGeneration
}

// Look up the bucket with the given name, treating a stale listing ghost as
// absent.
//
// LOCKS_REQUIRED(f.mu)
func (f *fakeStorage) liveBucket(name string) (b *fakeBucket, err error) {
	b, ok := f.buckets[name]
	if !ok || b.deleted {
		b = nil
		err = &storage.NotFoundError{
			Err: fmt.Errorf("bucket %q not found", name),
		}

		return
	}

	return
}

// LOCKS_REQUIRED(f.mu)
func (f *fakeStorage) liveObject(id storage.ResourceID) (
	o *fakeObject, err error) {
	b, err := f.liveBucket(id.BucketName())
	if err != nil {
		return
	}

	o, ok := b.objects[id.ObjectName()]
	if !ok || o.deleted {
		o = nil
		err = &storage.NotFoundError{
			Err: fmt.Errorf("object %s not found", id),
		}

		return
	}

	return
}

// Commit the supplied contents as the object described by req, checking any
// generation precondition.
//
// LOCKS_EXCLUDED(f.mu)
func (f *fakeStorage) commitObject(
	req *storage.CreateObjectRequest,
	contents []byte) (err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.checkOpen()

	b, err := f.liveBucket(req.ID.BucketName())
	if err != nil {
		return
	}

	existing, hasExisting := b.objects[req.ID.ObjectName()]

	// A ghost of a deleted object doesn't count as existing, but its name is
	// still in the listing index, so a replacement is listed immediately.
	wasListed := hasExisting && existing.inListing
	if hasExisting && existing.deleted {
		hasExisting = false
	}

	if req.GenerationPrecondition != nil {
		p := *req.GenerationPrecondition
		switch {
		case p == 0 && hasExisting:
			err = &storage.PreconditionError{
				Err: fmt.Errorf("object %s already exists", req.ID),
			}
			return

		case p != 0 && !hasExisting:
			err = &storage.PreconditionError{
				Err: fmt.Errorf("object %s doesn't exist", req.ID),
			}
			return

		case p != 0 && existing.info.Generation != p:
			err = &storage.PreconditionError{
				Err: fmt.Errorf(
					"generation mismatch for %s: %d vs. %d",
					req.ID,
					existing.info.Generation,
					p),
			}
			return
		}
	}

	now := f.clock.Now()
	o := &fakeObject{
		info: &storage.ItemInfo{
			ID:          req.ID,
			Size:        int64(len(contents)),
			ContentType: req.ContentType,
			Metadata:    copyMetadata(req.Metadata),
			Generation:  f.mintGeneration(),
			Created:     now,
			Updated:     now,
		},
		contents:  contents,
		inListing: !f.lagged || wasListed,
	}

	b.objects[req.ID.ObjectName()] = o
	return
}

func copyMetadata(in map[string]string) (out map[string]string) {
	if in == nil {
		return
	}

	out = make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}

	return
}

////////////////////////////////////////////////////////////////////////
// Fake interface
////////////////////////////////////////////////////////////////////////

// LOCKS_EXCLUDED(f.mu)
func (f *fakeStorage) SetListingLagged(lagged bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lagged = lagged

	// Returning to a consistent index flushes all lag artifacts.
	if !lagged {
		for bucketName, b := range f.buckets {
			if b.deleted {
				delete(f.buckets, bucketName)
				continue
			}

			b.inListing = true
			for objectName, o := range b.objects {
				if o.deleted {
					delete(b.objects, objectName)
					continue
				}

				o.inListing = true
			}
		}
	}
}

////////////////////////////////////////////////////////////////////////
// Storage interface
////////////////////////////////////////////////////////////////////////

func (f *fakeStorage) CreateObject(
	ctx context.Context,
	req *storage.CreateObjectRequest) (w io.WriteCloser, err error) {
	if !req.ID.IsStorageObject() {
		err = &storage.InvalidArgumentError{
			Err: fmt.Errorf("CreateObject with non-object ID %s", req.ID),
		}

		return
	}

	// The bucket must exist up front, even though nothing is committed until
	// the writer is closed.
	f.mu.Lock()
	f.checkOpen()
	_, err = f.liveBucket(req.ID.BucketName())
	f.mu.Unlock()

	if err != nil {
		return
	}

	w = newObjectWriter(f, req)
	return
}

func (f *fakeStorage) CreateEmptyObject(
	ctx context.Context,
	req *storage.CreateObjectRequest) (err error) {
	err = f.commitObject(req, []byte{})
	return
}

func (f *fakeStorage) CreateEmptyObjects(
	ctx context.Context,
	reqs []*storage.CreateObjectRequest) (err error) {
	for _, req := range reqs {
		if err = f.commitObject(req, []byte{}); err != nil {
			return
		}
	}

	return
}

// LOCKS_EXCLUDED(f.mu)
func (f *fakeStorage) NewReader(
	ctx context.Context,
	id storage.ResourceID) (rc io.ReadCloser, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.checkOpen()

	o, err := f.liveObject(id)
	if err != nil {
		return
	}

	rc = ioutil.NopCloser(bytes.NewReader(o.contents))
	return
}

// LOCKS_EXCLUDED(f.mu)
func (f *fakeStorage) CreateBucket(
	ctx context.Context,
	bucketName string) (err error) {
	id, err := storage.NewBucketID(bucketName)
	if err != nil {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.checkOpen()

	if existing, ok := f.buckets[bucketName]; ok && !existing.deleted {
		err = fmt.Errorf("bucket %q already exists", bucketName)
		return
	}

	now := f.clock.Now()
	f.buckets[bucketName] = &fakeBucket{
		info: &storage.ItemInfo{
			ID:      id,
			Created: now,
			Updated: now,
		},
		inListing: !f.lagged,
		objects:   make(map[string]*fakeObject),
	}

	return
}

// LOCKS_EXCLUDED(f.mu)
func (f *fakeStorage) DeleteBuckets(
	ctx context.Context,
	bucketNames []string) (err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.checkOpen()

	for _, bucketName := range bucketNames {
		var b *fakeBucket
		b, err = f.liveBucket(bucketName)
		if err != nil {
			return
		}

		for _, o := range b.objects {
			if !o.deleted {
				err = fmt.Errorf("bucket %q is not empty", bucketName)
				return
			}
		}

		if f.lagged && b.inListing {
			b.deleted = true
		} else {
			delete(f.buckets, bucketName)
		}
	}

	return
}

// LOCKS_EXCLUDED(f.mu)
func (f *fakeStorage) DeleteObjects(
	ctx context.Context,
	ids []storage.ResourceID) (err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.checkOpen()

	for _, id := range ids {
		var o *fakeObject
		o, err = f.liveObject(id)
		if err != nil {
			return
		}

		b := f.buckets[id.BucketName()]
		if f.lagged && o.inListing {
			o.deleted = true
		} else {
			delete(b.objects, id.ObjectName())
		}
	}

	return
}

// LOCKS_EXCLUDED(f.mu)
func (f *fakeStorage) CopyObjects(
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

	f.mu.Lock()
	defer f.mu.Unlock()

	f.checkOpen()

	dstBucket, err := f.liveBucket(req.DstBucket)
	if err != nil {
		return
	}

	now := f.clock.Now()
	for i, srcName := range req.SrcNames {
		var srcID storage.ResourceID
		srcID, err = storage.NewObjectID(req.SrcBucket, srcName)
		if err != nil {
			return
		}

		var src *fakeObject
		src, err = f.liveObject(srcID)
		if err != nil {
			return
		}

		var dstID storage.ResourceID
		dstID, err = storage.NewObjectID(req.DstBucket, req.DstNames[i])
		if err != nil {
			return
		}

		existing, hasExisting := dstBucket.objects[dstID.ObjectName()]

		info := *src.info
		info.ID = dstID
		info.Metadata = copyMetadata(src.info.Metadata)
		info.Generation = f.mintGeneration()
		info.Created = now
		info.Updated = now

		dstBucket.objects[dstID.ObjectName()] = &fakeObject{
			info:      &info,
			contents:  src.contents,
			inListing: !f.lagged || (hasExisting && existing.inListing),
		}
	}

	return
}

// LOCKS_EXCLUDED(f.mu)
func (f *fakeStorage) ListBucketNames(
	ctx context.Context) (names []string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.checkOpen()

	for bucketName, b := range f.buckets {
		if b.inListing {
			names = append(names, bucketName)
		}
	}

	sort.Strings(names)
	return
}

// LOCKS_EXCLUDED(f.mu)
func (f *fakeStorage) ListBucketInfo(
	ctx context.Context) (infos []*storage.ItemInfo, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.checkOpen()

	var names []string
	for bucketName, b := range f.buckets {
		if b.inListing {
			names = append(names, bucketName)
		}
	}

	sort.Strings(names)
	for _, name := range names {
		infos = append(infos, f.buckets[name].info)
	}

	return
}

// Collect the listed object names of the given bucket that match the given
// prefix, applying directory-style delimiter collapse.
//
// LOCKS_REQUIRED(f.mu)
func listedNames(
	b *fakeBucket,
	prefix string,
	delimiter string) (direct []string, collapsed []string) {
	collapsedSet := make(map[string]struct{})
	for name, o := range b.objects {
		if !o.inListing || !strings.HasPrefix(name, prefix) {
			continue
		}

		if delimiter != "" {
			if di := strings.Index(name[len(prefix):], delimiter); di >= 0 &&
				len(prefix)+di+len(delimiter) != len(name) {
				collapsedSet[name[:len(prefix)+di+len(delimiter)]] = struct{}{}
				continue
			}
		}

		direct = append(direct, name)
	}

	for p := range collapsedSet {
		// A collapsed prefix that names a listed directory placeholder object is
		// already among the direct results.
		if o, ok := b.objects[p]; ok && o.inListing {
			continue
		}

		collapsed = append(collapsed, p)
	}

	sort.Strings(direct)
	sort.Strings(collapsed)
	return
}

// LOCKS_EXCLUDED(f.mu)
func (f *fakeStorage) ListObjectNames(
	ctx context.Context,
	req *storage.ListObjectsRequest) (names []string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.checkOpen()

	b, err := f.liveBucket(req.Bucket)
	if err != nil {
		return
	}

	direct, collapsed := listedNames(b, req.Prefix, req.Delimiter)
	names = append(direct, collapsed...)
	sort.Strings(names)
	return
}

// LOCKS_EXCLUDED(f.mu)
func (f *fakeStorage) ListObjectInfo(
	ctx context.Context,
	req *storage.ListObjectsRequest) (infos []*storage.ItemInfo, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.checkOpen()

	b, err := f.liveBucket(req.Bucket)
	if err != nil {
		return
	}

	direct, _ := listedNames(b, req.Prefix, req.Delimiter)
	for _, name := range direct {
		infos = append(infos, b.objects[name].info)
	}

	return
}

// LOCKS_EXCLUDED(f.mu)
func (f *fakeStorage) StatItem(
	ctx context.Context,
	id storage.ResourceID) (info *storage.ItemInfo, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.checkOpen()

	switch {
	case id.IsRoot():
		info = &storage.ItemInfo{ID: storage.RootID}

	case id.IsBucket():
		var b *fakeBucket
		if b, err = f.liveBucket(id.BucketName()); err == nil {
			info = b.info
		}

	default:
		var o *fakeObject
		if o, err = f.liveObject(id); err == nil {
			info = o.info
		}
	}

	return
}

func (f *fakeStorage) StatItems(
	ctx context.Context,
	ids []storage.ResourceID) (infos []*storage.ItemInfo, err error) {
	for _, id := range ids {
		var info *storage.ItemInfo
		if info, err = f.StatItem(ctx, id); err != nil {
			infos = nil
			return
		}

		infos = append(infos, info)
	}

	return
}

// LOCKS_EXCLUDED(f.mu)
func (f *fakeStorage) UpdateItems(
	ctx context.Context,
	updates []*storage.ItemUpdate) (infos []*storage.ItemInfo, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.checkOpen()

	for _, u := range updates {
		var o *fakeObject
		o, err = f.liveObject(u.ID)
		if err != nil {
			infos = nil
			return
		}

		info := *o.info
		info.Metadata = copyMetadata(o.info.Metadata)

		if u.ContentType != nil {
			info.ContentType = *u.ContentType
		}

		for k, v := range u.Metadata {
			if v == nil {
				delete(info.Metadata, k)
				continue
			}

			if info.Metadata == nil {
				info.Metadata = make(map[string]string)
			}

			info.Metadata[k] = *v
		}

		info.MetaGeneration++
		info.Updated = f.clock.Now()

		o.info = &info
		infos = append(infos, &info)
	}

	return
}

func (f *fakeStorage) WaitForBucketEmpty(
	ctx context.Context,
	bucketName string) (err error) {
	for {
		var names []string
		names, err = f.ListObjectNames(
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

		case <-time.After(10 * time.Millisecond):
		}
	}
}

// LOCKS_EXCLUDED(f.mu)
func (f *fakeStorage) Close() (err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	return
}
