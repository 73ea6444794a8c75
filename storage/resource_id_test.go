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

package storage_test

import (
	"testing"

	"github.com/jacobsa/objstore/storage"
	. "github.com/jacobsa/ogletest"
)

func TestResourceID(t *testing.T) { RunTests(t) }

////////////////////////////////////////////////////////////////////////
// Boilerplate
////////////////////////////////////////////////////////////////////////

type ResourceIDTest struct {
}

func init() { RegisterTestSuite(&ResourceIDTest{}) }

////////////////////////////////////////////////////////////////////////
// Test functions
////////////////////////////////////////////////////////////////////////

func (t *ResourceIDTest) Root() {
	id := storage.RootID

	ExpectTrue(id.IsRoot())
	ExpectFalse(id.IsBucket())
	ExpectFalse(id.IsStorageObject())
	ExpectFalse(id.IsDirectory())

	ExpectEq("", id.BucketName())
	ExpectEq("", id.ObjectName())
	ExpectEq("root://", id.String())
}

func (t *ResourceIDTest) ZeroValueIsRoot() {
	var id storage.ResourceID

	ExpectTrue(id.IsRoot())
	ExpectTrue(id == storage.RootID)
	ExpectEq("root://", id.String())
}

func (t *ResourceIDTest) Bucket() {
	id, err := storage.NewBucketID("taco")
	AssertEq(nil, err)

	ExpectFalse(id.IsRoot())
	ExpectTrue(id.IsBucket())
	ExpectFalse(id.IsStorageObject())
	ExpectFalse(id.IsDirectory())

	ExpectEq("taco", id.BucketName())
	ExpectEq("", id.ObjectName())
	ExpectEq("root://taco", id.String())
}

func (t *ResourceIDTest) Object() {
	id, err := storage.NewObjectID("taco", "burrito/enchilada")
	AssertEq(nil, err)

	ExpectFalse(id.IsRoot())
	ExpectFalse(id.IsBucket())
	ExpectTrue(id.IsStorageObject())
	ExpectFalse(id.IsDirectory())

	ExpectEq("taco", id.BucketName())
	ExpectEq("burrito/enchilada", id.ObjectName())
	ExpectEq("root://taco/burrito/enchilada", id.String())
}

func (t *ResourceIDTest) DirectoryPlaceholder() {
	id, err := storage.NewObjectID("taco", "burrito/")
	AssertEq(nil, err)

	ExpectTrue(id.IsStorageObject())
	ExpectTrue(id.IsDirectory())
}

func (t *ResourceIDTest) EmptyBucketName() {
	_, err := storage.NewBucketID("")
	ExpectTrue(storage.IsInvalidArgument(err))

	_, err = storage.NewObjectID("", "burrito")
	ExpectTrue(storage.IsInvalidArgument(err))
}

func (t *ResourceIDTest) EmptyObjectName() {
	_, err := storage.NewObjectID("taco", "")
	ExpectTrue(storage.IsInvalidArgument(err))
}

func (t *ResourceIDTest) EqualityMatchesComponents() {
	a0, err := storage.NewObjectID("taco", "burrito")
	AssertEq(nil, err)

	a1, err := storage.NewObjectID("taco", "burrito")
	AssertEq(nil, err)

	b, err := storage.NewObjectID("taco", "enchilada")
	AssertEq(nil, err)

	c, err := storage.NewBucketID("taco")
	AssertEq(nil, err)

	ExpectTrue(a0 == a1)
	ExpectFalse(a0 == b)
	ExpectFalse(a0 == c)
	ExpectFalse(b == c)
}

func (t *ResourceIDTest) UsableAsMapKey() {
	objID, err := storage.NewObjectID("taco", "burrito")
	AssertEq(nil, err)

	bucketID, err := storage.NewBucketID("taco")
	AssertEq(nil, err)

	m := map[storage.ResourceID]int{
		storage.RootID: 0,
		bucketID:       1,
		objID:          2,
	}

	AssertEq(3, len(m))

	// Look up via independently-constructed IDs.
	otherObjID, err := storage.NewObjectID("taco", "burrito")
	AssertEq(nil, err)

	ExpectEq(2, m[otherObjID])
	ExpectEq(0, m[storage.ResourceID{}])
}

func (t *ResourceIDTest) StringsAreDistinct() {
	// Names chosen so that naive concatenation would collide.
	a, err := storage.NewObjectID("taco", "burrito")
	AssertEq(nil, err)

	b, err := storage.NewObjectID("taco/burrito", "x")
	AssertEq(nil, err)

	ExpectNe(a.String(), b.String())
}
