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
	"sort"
	"testing"
	"time"

	"github.com/jacobsa/objstore/storage"
	"github.com/jacobsa/objstore/storage/consistent"
	"github.com/jacobsa/objstore/storage/storagefake"
	. "github.com/jacobsa/oglematchers"
	. "github.com/jacobsa/ogletest"
	"github.com/jacobsa/timeutil"
	"golang.org/x/net/context"
)

func TestIntegration(t *testing.T) { RunTests(t) }

////////////////////////////////////////////////////////////////////////
// Boilerplate
////////////////////////////////////////////////////////////////////////

// Exercise a view over a backend whose listing index lags mutations,
// demonstrating the read-your-writes guarantee end to end.
type IntegrationTest struct {
	ctx   context.Context
	clock timeutil.SimulatedClock

	backend storagefake.Fake
	cache   consistent.DirectoryListCache
	view    storage.Storage
}

func init() { RegisterTestSuite(&IntegrationTest{}) }

func (t *IntegrationTest) SetUp(ti *TestInfo) {
	t.ctx = context.Background()
	t.clock.SetTime(someTime)

	t.backend = storagefake.NewFake(&t.clock)
	t.backend.SetListingLagged(true)

	t.cache = consistent.NewDirectoryListCache(ttl, &t.clock)
	t.view = consistent.NewView(t.cache, t.backend)

	AssertEq(nil, t.view.CreateBucket(t.ctx, "bucket"))
}

func (t *IntegrationTest) createEmpty(name string) {
	req := &storage.CreateObjectRequest{ID: objectID("bucket", name)}
	AssertEq(nil, t.view.CreateEmptyObject(t.ctx, req))
}

func (t *IntegrationTest) listNames(prefix string, delimiter string) []string {
	names, err := t.view.ListObjectNames(
		t.ctx,
		&storage.ListObjectsRequest{
			Bucket:    "bucket",
			Prefix:    prefix,
			Delimiter: delimiter,
		})

	AssertEq(nil, err)

	sort.Strings(names)
	return names
}

////////////////////////////////////////////////////////////////////////
// Test functions
////////////////////////////////////////////////////////////////////////

func (t *IntegrationTest) CreateThenList() {
	// The backend alone doesn't list the new object yet.
	t.createEmpty("new")

	backendNames, err := t.backend.ListObjectNames(
		t.ctx,
		&storage.ListObjectsRequest{Bucket: "bucket"})

	AssertEq(nil, err)
	AssertThat(backendNames, ElementsAre())

	// Through the view it is visible immediately.
	ExpectThat(t.listNames("", ""), ElementsAre("new"))
}

func (t *IntegrationTest) SupplementsWithoutDuplicating() {
	// One object the backend's index has caught up with, one it hasn't.
	t.createEmpty("x")
	t.backend.SetListingLagged(false)
	t.backend.SetListingLagged(true)
	t.createEmpty("y")

	ExpectThat(t.listNames("", ""), ElementsAre("x", "y"))
}

func (t *IntegrationTest) ListObjectInfoFetchesMetadata() {
	t.createEmpty("new")

	infos, err := t.view.ListObjectInfo(
		t.ctx,
		&storage.ListObjectsRequest{Bucket: "bucket"})

	AssertEq(nil, err)

	AssertEq(1, len(infos))
	ExpectThat(infos[0].ID, DeepEquals(objectID("bucket", "new")))
	ExpectNe(0, infos[0].Generation)
}

func (t *IntegrationTest) WriterCloseMakesObjectVisible() {
	req := &storage.CreateObjectRequest{ID: objectID("bucket", "new")}

	w, err := t.view.CreateObject(t.ctx, req)
	AssertEq(nil, err)

	_, err = w.Write([]byte("taco"))
	AssertEq(nil, err)

	// Not visible until the writer is closed.
	AssertThat(t.listNames("", ""), ElementsAre())

	AssertEq(nil, w.Close())
	ExpectThat(t.listNames("", ""), ElementsAre("new"))
}

func (t *IntegrationTest) DeletedObjectsVanishFromOwnListings() {
	t.createEmpty("doomed")
	t.createEmpty("kept")

	// Let the backend's index catch up, then lag again for the deletion.
	t.backend.SetListingLagged(false)
	t.backend.SetListingLagged(true)

	id := objectID("bucket", "doomed")
	AssertEq(nil, t.view.DeleteObjects(t.ctx, []storage.ResourceID{id}))

	// The backend's stale index still lists the deleted object; without
	// tombstones the view can't suppress that, so it reappears. Only the
	// supplemented entry is gone.
	names := t.listNames("", "")
	ExpectThat(names, Contains("kept"))

	// Once the backend catches up, the ghost is gone too.
	t.backend.SetListingLagged(false)
	ExpectThat(t.listNames("", ""), ElementsAre("kept"))
}

func (t *IntegrationTest) CreateAfterDeleteIsVisible() {
	t.createEmpty("phoenix")

	id := objectID("bucket", "phoenix")
	AssertEq(nil, t.view.DeleteObjects(t.ctx, []storage.ResourceID{id}))
	AssertThat(t.listNames("", ""), ElementsAre())

	t.createEmpty("phoenix")
	ExpectThat(t.listNames("", ""), ElementsAre("phoenix"))
}

func (t *IntegrationTest) DirectoryStyleListing() {
	t.createEmpty("dir/")
	t.createEmpty("dir/obj")
	t.createEmpty("dir/subdir/")
	t.createEmpty("dir/subdir/obj")
	t.createEmpty("top")

	ExpectThat(t.listNames("", "/"), ElementsAre("dir/", "top"))
	ExpectThat(t.listNames("dir/", "/"), ElementsAre("dir/", "dir/obj", "dir/subdir/"))
}

func (t *IntegrationTest) CopiedObjectsAreVisible() {
	t.createEmpty("src")

	req := &storage.CopyObjectsRequest{
		SrcBucket: "bucket",
		SrcNames:  []string{"src"},
		DstBucket: "bucket",
		DstNames:  []string{"dst"},
	}

	AssertEq(nil, t.view.CopyObjects(t.ctx, req))
	ExpectThat(t.listNames("", ""), ElementsAre("dst", "src"))
}

func (t *IntegrationTest) CacheExpiryRestoresBackendView() {
	t.createEmpty("new")
	AssertThat(t.listNames("", ""), ElementsAre("new"))

	// After the cache entries lapse, the view degrades to the backend's
	// (stale) view.
	t.clock.AdvanceTime(ttl + time.Millisecond)
	ExpectThat(t.listNames("", ""), ElementsAre())
}

func (t *IntegrationTest) BucketListings() {
	t.backend.SetListingLagged(true)
	AssertEq(nil, t.view.CreateBucket(t.ctx, "other"))

	names, err := t.view.ListBucketNames(t.ctx)
	AssertEq(nil, err)

	sort.Strings(names)
	ExpectThat(names, Contains("other"))
}
