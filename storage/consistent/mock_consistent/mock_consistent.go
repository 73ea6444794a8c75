// This file was auto-generated using createmock. See the following page for
// more information:
//
//     https://github.com/jacobsa/oglemock

package mock_consistent

import (
	fmt "fmt"
	runtime "runtime"
	unsafe "unsafe"
	oglemock "github.com/jacobsa/oglemock"
	consistent "github.com/jacobsa/objstore/storage/consistent"
	storage "github.com/jacobsa/objstore/storage"
)

type MockDirectoryListCache interface {
	consistent.DirectoryListCache
	oglemock.MockObject
}

type mockDirectoryListCache struct {
	controller  oglemock.Controller
	description string
}

func NewMockDirectoryListCache(
	c oglemock.Controller,
	desc string) MockDirectoryListCache {
	return &mockDirectoryListCache{
		controller:  c,
		description: desc,
	}
}

func (m *mockDirectoryListCache) Oglemock_Id() uintptr {
	return uintptr(unsafe.Pointer(m))
}

func (m *mockDirectoryListCache) Oglemock_Description() string {
	return m.description
}

func (m *mockDirectoryListCache) BucketList() (o0 []*consistent.CacheEntry) {
	// Get a file name and line number for the caller.
	_, file, line, _ := runtime.Caller(1)

	// Hand the call off to the controller, which does most of the work.
	retVals := m.controller.HandleMethodCall(
		m,
		"BucketList",
		file,
		line,
		[]interface{}{})

	if len(retVals) != 1 {
		panic(fmt.Sprintf("mockDirectoryListCache.BucketList: invalid return values: %v", retVals))
	}

	// o0 []*consistent.CacheEntry
	if retVals[0] != nil {
		o0 = retVals[0].([]*consistent.CacheEntry)
	}

	return
}

func (m *mockDirectoryListCache) CheckInvariants() {
	// Get a file name and line number for the caller.
	_, file, line, _ := runtime.Caller(1)

	// Hand the call off to the controller, which does most of the work.
	retVals := m.controller.HandleMethodCall(
		m,
		"CheckInvariants",
		file,
		line,
		[]interface{}{})

	if len(retVals) != 0 {
		panic(fmt.Sprintf("mockDirectoryListCache.CheckInvariants: invalid return values: %v", retVals))
	}

	return
}

func (m *mockDirectoryListCache) ObjectList(p0 string, p1 string, p2 string, p3 string) (o0 []*consistent.CacheEntry) {
	// Get a file name and line number for the caller.
	_, file, line, _ := runtime.Caller(1)

	// Hand the call off to the controller, which does most of the work.
	retVals := m.controller.HandleMethodCall(
		m,
		"ObjectList",
		file,
		line,
		[]interface{}{p0, p1, p2, p3})

	if len(retVals) != 1 {
		panic(fmt.Sprintf("mockDirectoryListCache.ObjectList: invalid return values: %v", retVals))
	}

	// o0 []*consistent.CacheEntry
	if retVals[0] != nil {
		o0 = retVals[0].([]*consistent.CacheEntry)
	}

	return
}

func (m *mockDirectoryListCache) PutResourceID(p0 storage.ResourceID) {
	// Get a file name and line number for the caller.
	_, file, line, _ := runtime.Caller(1)

	// Hand the call off to the controller, which does most of the work.
	retVals := m.controller.HandleMethodCall(
		m,
		"PutResourceID",
		file,
		line,
		[]interface{}{p0})

	if len(retVals) != 0 {
		panic(fmt.Sprintf("mockDirectoryListCache.PutResourceID: invalid return values: %v", retVals))
	}

	return
}

func (m *mockDirectoryListCache) RemoveResourceID(p0 storage.ResourceID) {
	// Get a file name and line number for the caller.
	_, file, line, _ := runtime.Caller(1)

	// Hand the call off to the controller, which does most of the work.
	retVals := m.controller.HandleMethodCall(
		m,
		"RemoveResourceID",
		file,
		line,
		[]interface{}{p0})

	if len(retVals) != 0 {
		panic(fmt.Sprintf("mockDirectoryListCache.RemoveResourceID: invalid return values: %v", retVals))
	}

	return
}
