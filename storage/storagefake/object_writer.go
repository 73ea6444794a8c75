// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

package storagefake

import (
	"bytes"
	"io"

	"github.com/jacobsa/objstore/storage"
)

type objectWriter struct {
	// The fake to which we will commit ourselves when complete.
	fake *fakeStorage

	// The user-supplied request. Always non-nil.
	req *storage.CreateObjectRequest

	// The buffer to which we are forwarding writes. Nil after Close has been
	// called.
	buf *bytes.Buffer
}

func (w *objectWriter) Write(p []byte) (int, error) {
	if w.buf == nil {
		panic("Call to Write after call to Close.")
	}

	return w.buf.Write(p)
}

func (w *objectWriter) Close() error {
	// Consume the buffer.
	if w.buf == nil {
		panic("Extra call to Close.")
	}

	contents := w.buf.Bytes()
	w.buf = nil

	// Commit the contents to the fake.
	return w.fake.commitObject(w.req, contents)
}

func newObjectWriter(
	fake *fakeStorage,
	req *storage.CreateObjectRequest) io.WriteCloser {
	return &objectWriter{
		fake: fake,
		req:  req,
		buf:  new(bytes.Buffer),
	}
}
