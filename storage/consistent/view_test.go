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

package consistent_test

import (
	"errors"
	"testing"

	"github.com/jacobsa/objstore/storage"
	"github.com/jacobsa/objstore/storage/consistent"
	"github.com/jacobsa/objstore/storage/consistent/mock_consistent"
	"github.com/jacobsa/objstore/storage/mock_storage"
	. "github.com/jacobsa/oglematchers"
	. "github.com/jacobsa/oglemock"
	. "github.com/jacobsa/ogletest"
)

func TestView(t *testing.T) { RunTests(t) }

////////////////////////////////////////////////////////////////////////
// Helpers
////////////////////////////////////////////////////////////////////////

// An io.WriteCloser whose Close returns a canned error.
type fakeWriter struct {
	closeErr error
	closed   bool
}

func (w *fakeWriter) Write(p []byte) (int, error) { return len(p), nil }

func (w *fakeWriter) Close() error {
	w.closed = true
	return w.closeErr
}

////////////////////////////////////////////////////////////////////////
// Boilerplate
////////////////////////////////////////////////////////////////////////

type viewTest struct {
	cache   mock_consistent.MockDirectoryListCache
	wrapped mock_storage.MockStorage

	view storage.Storage
}

func (t *viewTest) SetUp(ti *TestInfo) {
	t.cache = mock_consistent.NewMockDirectoryListCache(ti.MockController, "cache")
	t.wrapped = mock_storage.NewMockStorage(ti.MockController, "wrapped")

	t.view = consistent.NewView(t.cache, t.wrapped)
}

////////////////////////////////////////////////////////////////////////
// CreateObject
////////////////////////////////////////////////////////////////////////

type CreateObjectTest struct {
	viewTest
}

func init() { RegisterTestSuite(&CreateObjectTest{}) }

func (t *CreateObjectTest) WrappedFails() {
	req := &storage.CreateObjectRequest{ID: objectID("taco", "burrito")}

	// Wrapped
	ExpectCall(t.wrapped, "CreateObject")(Any(), req).
		WillOnce(Return(nil, errors.New("enchilada")))

	// Call. The cache must not hear about the failure.
	_, err := t.view.CreateObject(nil, req)
	ExpectThat(err, Error(HasSubstr("enchilada")))
}

func (t *CreateObjectTest) RecordsOnlyOnSuccessfulClose() {
	id := objectID("taco", "burrito")
	req := &storage.CreateObjectRequest{ID: id}
	inner := &fakeWriter{}

	// Wrapped
	ExpectCall(t.wrapped, "CreateObject")(Any(), req).
		WillOnce(Return(inner, nil))

	// Call. Nothing is recorded until the writer is closed.
	w, err := t.view.CreateObject(nil, req)
	AssertEq(nil, err)

	_, err = w.Write([]byte("queso"))
	AssertEq(nil, err)

	// Close
	ExpectCall(t.cache, "PutResourceID")(DeepEquals(id)).
		WillOnce(Return())

	AssertEq(nil, w.Close())
	ExpectTrue(inner.closed)
}

func (t *CreateObjectTest) CloseFails() {
	req := &storage.CreateObjectRequest{ID: objectID("taco", "burrito")}
	inner := &fakeWriter{closeErr: errors.New("enchilada")}

	// Wrapped
	ExpectCall(t.wrapped, "CreateObject")(Any(), req).
		WillOnce(Return(inner, nil))

	// Call, then close. The failed write must not be recorded.
	w, err := t.view.CreateObject(nil, req)
	AssertEq(nil, err)

	ExpectThat(w.Close(), Error(HasSubstr("enchilada")))
}

func (t *CreateObjectTest) CreateEmptyObjectWrappedFails() {
	req := &storage.CreateObjectRequest{ID: objectID("taco", "burrito")}

	// Wrapped
	ExpectCall(t.wrapped, "CreateEmptyObject")(Any(), req).
		WillOnce(Return(errors.New("enchilada")))

	// Call
	err := t.view.CreateEmptyObject(nil, req)
	ExpectThat(err, Error(HasSubstr("enchilada")))
}

func (t *CreateObjectTest) CreateEmptyObjectSucceeds() {
	id := objectID("taco", "burrito")
	req := &storage.CreateObjectRequest{ID: id}

	// Wrapped
	ExpectCall(t.wrapped, "CreateEmptyObject")(Any(), req).
		WillOnce(Return(nil))

	// Cache
	ExpectCall(t.cache, "PutResourceID")(DeepEquals(id)).
		WillOnce(Return())

	// Call
	AssertEq(nil, t.view.CreateEmptyObject(nil, req))
}

func (t *CreateObjectTest) CreateEmptyObjectsSucceeds() {
	id0 := objectID("taco", "burrito")
	id1 := objectID("taco", "enchilada")

	reqs := []*storage.CreateObjectRequest{
		{ID: id0},
		{ID: id1},
	}

	// Wrapped
	ExpectCall(t.wrapped, "CreateEmptyObjects")(Any(), Any()).
		WillOnce(Return(nil))

	// Cache
	ExpectCall(t.cache, "PutResourceID")(DeepEquals(id0)).
		WillOnce(Return())

	ExpectCall(t.cache, "PutResourceID")(DeepEquals(id1)).
		WillOnce(Return())

	// Call
	AssertEq(nil, t.view.CreateEmptyObjects(nil, reqs))
}

func (t *CreateObjectTest) CreateBucketSucceeds() {
	id := bucketID("taco")

	// Wrapped
	ExpectCall(t.wrapped, "CreateBucket")(Any(), "taco").
		WillOnce(Return(nil))

	// Cache
	ExpectCall(t.cache, "PutResourceID")(DeepEquals(id)).
		WillOnce(Return())

	// Call
	AssertEq(nil, t.view.CreateBucket(nil, "taco"))
}

////////////////////////////////////////////////////////////////////////
// Deleting and copying
////////////////////////////////////////////////////////////////////////

type DeleteCopyTest struct {
	viewTest
}

func init() { RegisterTestSuite(&DeleteCopyTest{}) }

func (t *DeleteCopyTest) DeleteObjectsWrappedFails() {
	ids := []storage.ResourceID{objectID("taco", "burrito")}

	// Wrapped
	ExpectCall(t.wrapped, "DeleteObjects")(Any(), Any()).
		WillOnce(Return(errors.New("enchilada")))

	// Call. The cache entries must survive.
	err := t.view.DeleteObjects(nil, ids)
	ExpectThat(err, Error(HasSubstr("enchilada")))
}

func (t *DeleteCopyTest) DeleteObjectsSucceeds() {
	id0 := objectID("taco", "burrito")
	id1 := objectID("taco", "enchilada")

	// Wrapped
	ExpectCall(t.wrapped, "DeleteObjects")(Any(), Any()).
		WillOnce(Return(nil))

	// Cache
	ExpectCall(t.cache, "RemoveResourceID")(DeepEquals(id0)).
		WillOnce(Return())

	ExpectCall(t.cache, "RemoveResourceID")(DeepEquals(id1)).
		WillOnce(Return())

	// Call
	AssertEq(nil, t.view.DeleteObjects(nil, []storage.ResourceID{id0, id1}))
}

func (t *DeleteCopyTest) DeleteBucketsSucceeds() {
	id := bucketID("taco")

	// Wrapped
	ExpectCall(t.wrapped, "DeleteBuckets")(Any(), Any()).
		WillOnce(Return(nil))

	// Cache
	ExpectCall(t.cache, "RemoveResourceID")(DeepEquals(id)).
		WillOnce(Return())

	// Call
	AssertEq(nil, t.view.DeleteBuckets(nil, []string{"taco"}))
}

func (t *DeleteCopyTest) CopyObjectsRecordsDestinations() {
	dst0 := objectID("queso", "burrito")
	dst1 := objectID("queso", "enchilada")

	req := &storage.CopyObjectsRequest{
		SrcBucket: "taco",
		SrcNames:  []string{"a", "b"},
		DstBucket: "queso",
		DstNames:  []string{"burrito", "enchilada"},
	}

	// Wrapped
	ExpectCall(t.wrapped, "CopyObjects")(Any(), req).
		WillOnce(Return(nil))

	// Cache. Only the destinations are recorded.
	ExpectCall(t.cache, "PutResourceID")(DeepEquals(dst0)).
		WillOnce(Return())

	ExpectCall(t.cache, "PutResourceID")(DeepEquals(dst1)).
		WillOnce(Return())

	// Call
	AssertEq(nil, t.view.CopyObjects(nil, req))
}

////////////////////////////////////////////////////////////////////////
// ListObjectNames
////////////////////////////////////////////////////////////////////////

type ListObjectNamesTest struct {
	viewTest

	req *storage.ListObjectsRequest
}

func init() { RegisterTestSuite(&ListObjectNamesTest{}) }

func (t *ListObjectNamesTest) SetUp(ti *TestInfo) {
	t.viewTest.SetUp(ti)

	t.req = &storage.ListObjectsRequest{
		Bucket: "taco",
	}
}

func (t *ListObjectNamesTest) WrappedFails() {
	// Wrapped
	ExpectCall(t.wrapped, "ListObjectNames")(Any(), t.req).
		WillOnce(Return(nil, errors.New("enchilada")))

	// Call. The cache isn't even consulted.
	_, err := t.view.ListObjectNames(nil, t.req)
	ExpectThat(err, Error(HasSubstr("enchilada")))
}

func (t *ListObjectNamesTest) EmptyCache() {
	// Wrapped
	ExpectCall(t.wrapped, "ListObjectNames")(Any(), t.req).
		WillOnce(Return([]string{"burrito", "enchilada"}, nil))

	// Cache
	ExpectCall(t.cache, "ObjectList")("taco", "", "", "").
		WillOnce(Return(nil))

	// Call
	names, err := t.view.ListObjectNames(nil, t.req)
	AssertEq(nil, err)
	ExpectThat(names, ElementsAre("burrito", "enchilada"))
}

func (t *ListObjectNamesTest) SupplementsAndDeduplicates() {
	// Wrapped. The backend has caught up with "x" but not "y".
	ExpectCall(t.wrapped, "ListObjectNames")(Any(), t.req).
		WillOnce(Return([]string{"x"}, nil))

	// Cache
	entries := []*consistent.CacheEntry{
		consistent.NewCacheEntry(objectID("taco", "x")),
		consistent.NewCacheEntry(objectID("taco", "y")),
	}

	ExpectCall(t.cache, "ObjectList")("taco", "", "", "").
		WillOnce(Return(entries))

	// Call
	names, err := t.view.ListObjectNames(nil, t.req)
	AssertEq(nil, err)
	ExpectThat(names, ElementsAre("x", "y"))
}

func (t *ListObjectNamesTest) PassesPrefixAndDelimiterThrough() {
	t.req.Prefix = "burrito/"
	t.req.Delimiter = "/"

	// Wrapped
	ExpectCall(t.wrapped, "ListObjectNames")(Any(), t.req).
		WillOnce(Return(nil, nil))

	// Cache
	ExpectCall(t.cache, "ObjectList")("taco", "burrito/", "/", "").
		WillOnce(Return(nil))

	// Call
	_, err := t.view.ListObjectNames(nil, t.req)
	AssertEq(nil, err)
}

////////////////////////////////////////////////////////////////////////
// ListObjectInfo
////////////////////////////////////////////////////////////////////////

type ListObjectInfoTest struct {
	viewTest

	req *storage.ListObjectsRequest
}

func init() { RegisterTestSuite(&ListObjectInfoTest{}) }

func (t *ListObjectInfoTest) SetUp(ti *TestInfo) {
	t.viewTest.SetUp(ti)

	t.req = &storage.ListObjectsRequest{
		Bucket: "taco",
	}
}

func (t *ListObjectInfoTest) UsesAttachedInfoWithoutFetching() {
	id := objectID("taco", "burrito")

	entry := consistent.NewCacheEntry(id)
	info := &storage.ItemInfo{ID: id, Size: 17}
	entry.SetItemInfo(info)

	// Wrapped. No StatItem call is expected.
	ExpectCall(t.wrapped, "ListObjectInfo")(Any(), t.req).
		WillOnce(Return(nil, nil))

	// Cache
	ExpectCall(t.cache, "ObjectList")(Any(), Any(), Any(), Any()).
		WillOnce(Return([]*consistent.CacheEntry{entry}))

	// Call
	infos, err := t.view.ListObjectInfo(nil, t.req)
	AssertEq(nil, err)

	AssertEq(1, len(infos))
	ExpectEq(info, infos[0])
}

func (t *ListObjectInfoTest) FetchesAndAttachesMissingInfo() {
	id := objectID("taco", "burrito")
	entry := consistent.NewCacheEntry(id)
	info := &storage.ItemInfo{ID: id, Size: 17}

	// Wrapped
	ExpectCall(t.wrapped, "ListObjectInfo")(Any(), t.req).
		WillOnce(Return(nil, nil))

	ExpectCall(t.wrapped, "StatItem")(Any(), DeepEquals(id)).
		WillOnce(Return(info, nil))

	// Cache
	ExpectCall(t.cache, "ObjectList")(Any(), Any(), Any(), Any()).
		WillOnce(Return([]*consistent.CacheEntry{entry}))

	// Call
	infos, err := t.view.ListObjectInfo(nil, t.req)
	AssertEq(nil, err)

	AssertEq(1, len(infos))
	ExpectEq(info, infos[0])

	// The fetched metadata must now be attached to the entry, so the next
	// listing doesn't fetch again.
	ExpectEq(info, entry.ItemInfo())
}

func (t *ListObjectInfoTest) DropsEntriesTheBackendHasForgotten() {
	id := objectID("taco", "burrito")
	entry := consistent.NewCacheEntry(id)

	// Wrapped. The object has been deleted out from under the cache.
	ExpectCall(t.wrapped, "ListObjectInfo")(Any(), t.req).
		WillOnce(Return(nil, nil))

	ExpectCall(t.wrapped, "StatItem")(Any(), DeepEquals(id)).
		WillOnce(Return(nil, &storage.NotFoundError{Err: errors.New("gone")}))

	// Cache
	ExpectCall(t.cache, "ObjectList")(Any(), Any(), Any(), Any()).
		WillOnce(Return([]*consistent.CacheEntry{entry}))

	// Call. No error, no result for the stale entry.
	infos, err := t.view.ListObjectInfo(nil, t.req)
	AssertEq(nil, err)
	ExpectThat(infos, ElementsAre())
}

func (t *ListObjectInfoTest) StatItemFails() {
	id := objectID("taco", "burrito")
	entry := consistent.NewCacheEntry(id)

	// Wrapped
	ExpectCall(t.wrapped, "ListObjectInfo")(Any(), t.req).
		WillOnce(Return(nil, nil))

	ExpectCall(t.wrapped, "StatItem")(Any(), DeepEquals(id)).
		WillOnce(Return(nil, errors.New("enchilada")))

	// Cache
	ExpectCall(t.cache, "ObjectList")(Any(), Any(), Any(), Any()).
		WillOnce(Return([]*consistent.CacheEntry{entry}))

	// Call
	_, err := t.view.ListObjectInfo(nil, t.req)
	ExpectThat(err, Error(HasSubstr("StatItem")))
	ExpectThat(err, Error(HasSubstr("enchilada")))
}

func (t *ListObjectInfoTest) DeduplicatesAgainstWrapped() {
	id := objectID("taco", "burrito")

	wrappedInfo := &storage.ItemInfo{ID: id, Size: 19}
	entry := consistent.NewCacheEntry(id)
	entry.SetItemInfo(&storage.ItemInfo{ID: id, Size: 17})

	// Wrapped. The backend has caught up with the object; its metadata wins.
	ExpectCall(t.wrapped, "ListObjectInfo")(Any(), t.req).
		WillOnce(Return([]*storage.ItemInfo{wrappedInfo}, nil))

	// Cache
	ExpectCall(t.cache, "ObjectList")(Any(), Any(), Any(), Any()).
		WillOnce(Return([]*consistent.CacheEntry{entry}))

	// Call
	infos, err := t.view.ListObjectInfo(nil, t.req)
	AssertEq(nil, err)

	AssertEq(1, len(infos))
	ExpectEq(wrappedInfo, infos[0])
}

////////////////////////////////////////////////////////////////////////
// Bucket listings
////////////////////////////////////////////////////////////////////////

type ListBucketsTest struct {
	viewTest
}

func init() { RegisterTestSuite(&ListBucketsTest{}) }

func (t *ListBucketsTest) NamesSupplementedAndDeduplicated() {
	// Wrapped
	ExpectCall(t.wrapped, "ListBucketNames")(Any()).
		WillOnce(Return([]string{"burrito"}, nil))

	// Cache
	entries := []*consistent.CacheEntry{
		consistent.NewCacheEntry(bucketID("burrito")),
		consistent.NewCacheEntry(bucketID("taco")),
	}

	ExpectCall(t.cache, "BucketList")().
		WillOnce(Return(entries))

	// Call
	names, err := t.view.ListBucketNames(nil)
	AssertEq(nil, err)
	ExpectThat(names, ElementsAre("burrito", "taco"))
}

func (t *ListBucketsTest) InfoFetchedOnDemand() {
	id := bucketID("taco")
	entry := consistent.NewCacheEntry(id)
	info := &storage.ItemInfo{ID: id}

	// Wrapped
	ExpectCall(t.wrapped, "ListBucketInfo")(Any()).
		WillOnce(Return(nil, nil))

	ExpectCall(t.wrapped, "StatItem")(Any(), DeepEquals(id)).
		WillOnce(Return(info, nil))

	// Cache
	ExpectCall(t.cache, "BucketList")().
		WillOnce(Return([]*consistent.CacheEntry{entry}))

	// Call
	infos, err := t.view.ListBucketInfo(nil)
	AssertEq(nil, err)

	AssertEq(1, len(infos))
	ExpectEq(info, infos[0])
}
