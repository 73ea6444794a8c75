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

package storagefake_test

import (
	"errors"
	"io/ioutil"
	"sort"
	"testing"
	"time"

	"github.com/jacobsa/objstore/storage"
	"github.com/jacobsa/objstore/storage/storagefake"
	. "github.com/jacobsa/oglematchers"
	. "github.com/jacobsa/ogletest"
	"github.com/jacobsa/timeutil"
	"golang.org/x/net/context"
)

func TestFake(t *testing.T) { RunTests(t) }

////////////////////////////////////////////////////////////////////////
// Helpers
////////////////////////////////////////////////////////////////////////

func objectID(bucket string, name string) storage.ResourceID {
	id, err := storage.NewObjectID(bucket, name)
	AssertEq(nil, err)

	return id
}

func makeInt64Ptr(v int64) *int64 { return &v }

////////////////////////////////////////////////////////////////////////
// Boilerplate
////////////////////////////////////////////////////////////////////////

type FakeTest struct {
	ctx   context.Context
	clock timeutil.SimulatedClock

	fake storagefake.Fake
}

func init() { RegisterTestSuite(&FakeTest{}) }

func (t *FakeTest) SetUp(ti *TestInfo) {
	t.ctx = context.Background()
	t.clock.SetTime(time.Date(2015, 4, 5, 2, 15, 0, 0, time.Local))

	t.fake = storagefake.NewFake(&t.clock)
	AssertEq(nil, t.fake.CreateBucket(t.ctx, "bucket"))
}

func (t *FakeTest) create(name string, contents string) {
	req := &storage.CreateObjectRequest{ID: objectID("bucket", name)}

	w, err := t.fake.CreateObject(t.ctx, req)
	AssertEq(nil, err)

	_, err = w.Write([]byte(contents))
	AssertEq(nil, err)

	AssertEq(nil, w.Close())
}

func (t *FakeTest) listNames() []string {
	names, err := t.fake.ListObjectNames(
		t.ctx,
		&storage.ListObjectsRequest{Bucket: "bucket"})

	AssertEq(nil, err)

	sort.Strings(names)
	return names
}

////////////////////////////////////////////////////////////////////////
// Test functions
////////////////////////////////////////////////////////////////////////

func (t *FakeTest) ReadBackContents() {
	t.create("taco", "burrito")

	rc, err := t.fake.NewReader(t.ctx, objectID("bucket", "taco"))
	AssertEq(nil, err)

	contents, err := ioutil.ReadAll(rc)
	AssertEq(nil, err)
	AssertEq(nil, rc.Close())

	ExpectEq("burrito", string(contents))
}

func (t *FakeTest) StatMissingObject() {
	_, err := t.fake.StatItem(t.ctx, objectID("bucket", "taco"))
	ExpectTrue(storage.IsNotFound(err))
}

func (t *FakeTest) StatMissingBucket() {
	bucketID, err := storage.NewBucketID("missing")
	AssertEq(nil, err)

	_, err = t.fake.StatItem(t.ctx, bucketID)
	ExpectTrue(storage.IsNotFound(err))
}

func (t *FakeTest) StatReflectsCreation() {
	t.create("taco", "burrito")

	info, err := t.fake.StatItem(t.ctx, objectID("bucket", "taco"))
	AssertEq(nil, err)

	ExpectThat(info.ID, DeepEquals(objectID("bucket", "taco")))
	ExpectEq(len("burrito"), info.Size)
	ExpectNe(0, info.Generation)
	ExpectTrue(info.Created.Equal(t.clock.Now()))
}

func (t *FakeTest) OverwriteBumpsGeneration() {
	t.create("taco", "burrito")

	info0, err := t.fake.StatItem(t.ctx, objectID("bucket", "taco"))
	AssertEq(nil, err)

	t.create("taco", "enchilada")

	info1, err := t.fake.StatItem(t.ctx, objectID("bucket", "taco"))
	AssertEq(nil, err)

	ExpectLt(info0.Generation, info1.Generation)
	ExpectEq(len("enchilada"), info1.Size)
}

func (t *FakeTest) PreconditionZeroAndObjectExists() {
	t.create("taco", "burrito")

	req := &storage.CreateObjectRequest{
		ID:                     objectID("bucket", "taco"),
		GenerationPrecondition: makeInt64Ptr(0),
	}

	err := t.fake.CreateEmptyObject(t.ctx, req)

	var preconditionErr *storage.PreconditionError
	ExpectTrue(errors.As(err, &preconditionErr))
}

func (t *FakeTest) PreconditionNonZeroAndObjectMissing() {
	req := &storage.CreateObjectRequest{
		ID:                     objectID("bucket", "taco"),
		GenerationPrecondition: makeInt64Ptr(17),
	}

	err := t.fake.CreateEmptyObject(t.ctx, req)

	var preconditionErr *storage.PreconditionError
	ExpectTrue(errors.As(err, &preconditionErr))
}

func (t *FakeTest) PreconditionMatches() {
	t.create("taco", "burrito")

	info, err := t.fake.StatItem(t.ctx, objectID("bucket", "taco"))
	AssertEq(nil, err)

	req := &storage.CreateObjectRequest{
		ID:                     objectID("bucket", "taco"),
		GenerationPrecondition: makeInt64Ptr(info.Generation),
	}

	ExpectEq(nil, t.fake.CreateEmptyObject(t.ctx, req))
}

func (t *FakeTest) DeleteThenStat() {
	t.create("taco", "burrito")

	id := objectID("bucket", "taco")
	AssertEq(nil, t.fake.DeleteObjects(t.ctx, []storage.ResourceID{id}))

	_, err := t.fake.StatItem(t.ctx, id)
	ExpectTrue(storage.IsNotFound(err))
}

func (t *FakeTest) DeleteMissingObject() {
	id := objectID("bucket", "taco")
	err := t.fake.DeleteObjects(t.ctx, []storage.ResourceID{id})
	ExpectTrue(storage.IsNotFound(err))
}

func (t *FakeTest) DeleteNonEmptyBucket() {
	t.create("taco", "burrito")

	err := t.fake.DeleteBuckets(t.ctx, []string{"bucket"})
	ExpectThat(err, Error(HasSubstr("not empty")))
}

func (t *FakeTest) CopyObjects() {
	t.create("taco", "burrito")

	req := &storage.CopyObjectsRequest{
		SrcBucket: "bucket",
		SrcNames:  []string{"taco"},
		DstBucket: "bucket",
		DstNames:  []string{"queso"},
	}

	AssertEq(nil, t.fake.CopyObjects(t.ctx, req))

	rc, err := t.fake.NewReader(t.ctx, objectID("bucket", "queso"))
	AssertEq(nil, err)

	contents, err := ioutil.ReadAll(rc)
	AssertEq(nil, err)
	AssertEq(nil, rc.Close())

	ExpectEq("burrito", string(contents))
}

func (t *FakeTest) ListWithPrefixAndDelimiter() {
	t.create("dir/", "")
	t.create("dir/obj", "")
	t.create("dir/subdir/obj", "")
	t.create("top", "")

	names, err := t.fake.ListObjectNames(
		t.ctx,
		&storage.ListObjectsRequest{
			Bucket:    "bucket",
			Delimiter: "/",
		})

	AssertEq(nil, err)

	sort.Strings(names)
	ExpectThat(names, ElementsAre("dir/", "top"))

	names, err = t.fake.ListObjectNames(
		t.ctx,
		&storage.ListObjectsRequest{
			Bucket:    "bucket",
			Prefix:    "dir/",
			Delimiter: "/",
		})

	AssertEq(nil, err)

	sort.Strings(names)
	ExpectThat(names, ElementsAre("dir/", "dir/obj", "dir/subdir/"))
}

func (t *FakeTest) LaggedListingHidesNewObjects() {
	t.fake.SetListingLagged(true)
	t.create("taco", "burrito")

	// Invisible to listings, but present.
	ExpectThat(t.listNames(), ElementsAre())

	_, err := t.fake.StatItem(t.ctx, objectID("bucket", "taco"))
	ExpectEq(nil, err)

	// Catching up makes it visible.
	t.fake.SetListingLagged(false)
	ExpectThat(t.listNames(), ElementsAre("taco"))
}

func (t *FakeTest) LaggedListingShowsGhosts() {
	t.create("taco", "burrito")

	t.fake.SetListingLagged(true)

	id := objectID("bucket", "taco")
	AssertEq(nil, t.fake.DeleteObjects(t.ctx, []storage.ResourceID{id}))

	// Still listed, but gone for all other purposes.
	ExpectThat(t.listNames(), ElementsAre("taco"))

	_, err := t.fake.StatItem(t.ctx, id)
	ExpectTrue(storage.IsNotFound(err))

	// Catching up clears the ghost.
	t.fake.SetListingLagged(false)
	ExpectThat(t.listNames(), ElementsAre())
}

func (t *FakeTest) RecreatedGhostIsListed() {
	t.create("taco", "burrito")

	t.fake.SetListingLagged(true)

	id := objectID("bucket", "taco")
	AssertEq(nil, t.fake.DeleteObjects(t.ctx, []storage.ResourceID{id}))

	// The name never left the listing index, so the replacement is listed
	// even while lagged.
	t.create("taco", "enchilada")
	ExpectThat(t.listNames(), ElementsAre("taco"))
}

func (t *FakeTest) UpdateItems() {
	t.create("taco", "burrito")

	newContentType := "text/plain"
	update := &storage.ItemUpdate{
		ID:          objectID("bucket", "taco"),
		ContentType: &newContentType,
	}

	infos, err := t.fake.UpdateItems(t.ctx, []*storage.ItemUpdate{update})
	AssertEq(nil, err)

	AssertEq(1, len(infos))
	ExpectEq("text/plain", infos[0].ContentType)
}

func (t *FakeTest) WaitForBucketEmpty() {
	t.create("taco", "burrito")

	// Delete concurrently, shortly after the wait begins.
	go func() {
		time.Sleep(50 * time.Millisecond)

		id := objectID("bucket", "taco")
		AssertEq(nil, t.fake.DeleteObjects(t.ctx, []storage.ResourceID{id}))
	}()

	ExpectEq(nil, t.fake.WaitForBucketEmpty(t.ctx, "bucket"))
}

func (t *FakeTest) UseAfterClosePanics() {
	AssertEq(nil, t.fake.Close())

	f := func() { t.fake.ListBucketNames(t.ctx) }
	ExpectThat(f, Panics(HasSubstr("Close")))
}
