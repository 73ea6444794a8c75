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

package storage

import (
	"io"
	"log"
	"math/rand"
	"net"
	"net/url"
	"time"

	"golang.org/x/net/context"
)

// NewRetryStorage wraps the supplied Storage in a layer that calls its
// methods in a retry loop with randomized exponential backoff, bounded by
// maxSleep of total sleeping per call. shouldRetry decides whether a given
// error is transient; if nil, DefaultShouldRetry is used.
//
// Retries happen below any consistency layer, so a successful retried
// mutation is recorded exactly once.
func NewRetryStorage(
	maxSleep time.Duration,
	shouldRetry func(error) bool,
	wrapped Storage) (s Storage) {
	if shouldRetry == nil {
		shouldRetry = DefaultShouldRetry
	}

	s = &retryStorage{
		maxSleep:    maxSleep,
		shouldRetry: shouldRetry,
		wrapped:     wrapped,
	}

	return
}

// DefaultShouldRetry is a backend-neutral transient-error predicate, covering
// network errors that tend to show up when doing lots of operations in
// parallel. For example:
//
//     dial tcp 74.125.203.95:443: too many open files
//
// Backend packages export their own predicates covering protocol-level
// errors; see e.g. gcsstore.ShouldRetry.
func DefaultShouldRetry(err error) (b bool) {
	if _, ok := err.(*net.OpError); ok {
		b = true
		return
	}

	// Sometimes the HTTP package helpfully encapsulates the real error in a URL
	// error.
	if urlErr, ok := err.(*url.Error); ok {
		b = DefaultShouldRetry(urlErr.Err)
		return
	}

	return
}

type retryStorage struct {
	maxSleep    time.Duration
	shouldRetry func(error) bool
	wrapped     Storage
}

////////////////////////////////////////////////////////////////////////
// Helpers
////////////////////////////////////////////////////////////////////////

// Exponential backoff for a function that might fail.
//
// The random component scales with the delay, so that the first sleep cannot
// be as long as one second. The algorithm used matches the description at
// http://en.wikipedia.org/wiki/Exponential_backoff.
func (rs *retryStorage) expBackoff(
	ctx context.Context,
	f func() error) (err error) {
	const baseDelay = time.Millisecond
	var totalSleep time.Duration

	for n := uint(0); ; n++ {
		// Make an attempt. Stop if successful.
		err = f()
		if err == nil {
			return
		}

		// Do we want to retry?
		if !rs.shouldRetry(err) {
			return
		}

		// Choose a delay in [0, 2^n * baseDelay).
		d := (1 << n) * baseDelay
		d = time.Duration(float64(d) * rand.Float64())

		// Are we out of credit?
		if totalSleep+d > rs.maxSleep {
			// Return the most recent error.
			return
		}

		// Sleep, returning early if cancelled.
		log.Printf("Retrying after error of type %T (%q) in %v", err, err, d)

		select {
		case <-ctx.Done():
			err = ctx.Err()
			return

		case <-time.After(d):
			totalSleep += d
			continue
		}
	}
}

////////////////////////////////////////////////////////////////////////
// Storage interface
////////////////////////////////////////////////////////////////////////

func (rs *retryStorage) CreateObject(
	ctx context.Context,
	req *CreateObjectRequest) (w io.WriteCloser, err error) {
	// We can only retry obtaining the writer. Once the caller has begun
	// streaming contents into it there is nothing left to replay them from, so
	// errors from the writer itself are not retried.
	err = rs.expBackoff(
		ctx,
		func() (err error) {
			w, err = rs.wrapped.CreateObject(ctx, req)
			return
		})

	return
}

func (rs *retryStorage) CreateEmptyObject(
	ctx context.Context,
	req *CreateObjectRequest) (err error) {
	err = rs.expBackoff(
		ctx,
		func() (err error) {
			err = rs.wrapped.CreateEmptyObject(ctx, req)
			return
		})

	return
}

func (rs *retryStorage) CreateEmptyObjects(
	ctx context.Context,
	reqs []*CreateObjectRequest) (err error) {
	err = rs.expBackoff(
		ctx,
		func() (err error) {
			err = rs.wrapped.CreateEmptyObjects(ctx, reqs)
			return
		})

	return
}

func (rs *retryStorage) NewReader(
	ctx context.Context,
	id ResourceID) (rc io.ReadCloser, err error) {
	err = rs.expBackoff(
		ctx,
		func() (err error) {
			rc, err = rs.wrapped.NewReader(ctx, id)
			return
		})

	return
}

func (rs *retryStorage) CreateBucket(
	ctx context.Context,
	bucketName string) (err error) {
	err = rs.expBackoff(
		ctx,
		func() (err error) {
			err = rs.wrapped.CreateBucket(ctx, bucketName)
			return
		})

	return
}

func (rs *retryStorage) DeleteBuckets(
	ctx context.Context,
	bucketNames []string) (err error) {
	err = rs.expBackoff(
		ctx,
		func() (err error) {
			err = rs.wrapped.DeleteBuckets(ctx, bucketNames)
			return
		})

	return
}

func (rs *retryStorage) DeleteObjects(
	ctx context.Context,
	ids []ResourceID) (err error) {
	err = rs.expBackoff(
		ctx,
		func() (err error) {
			err = rs.wrapped.DeleteObjects(ctx, ids)
			return
		})

	return
}

func (rs *retryStorage) CopyObjects(
	ctx context.Context,
	req *CopyObjectsRequest) (err error) {
	err = rs.expBackoff(
		ctx,
		func() (err error) {
			err = rs.wrapped.CopyObjects(ctx, req)
			return
		})

	return
}

func (rs *retryStorage) ListBucketNames(
	ctx context.Context) (names []string, err error) {
	err = rs.expBackoff(
		ctx,
		func() (err error) {
			names, err = rs.wrapped.ListBucketNames(ctx)
			return
		})

	return
}

func (rs *retryStorage) ListBucketInfo(
	ctx context.Context) (infos []*ItemInfo, err error) {
	err = rs.expBackoff(
		ctx,
		func() (err error) {
			infos, err = rs.wrapped.ListBucketInfo(ctx)
			return
		})

	return
}

func (rs *retryStorage) ListObjectNames(
	ctx context.Context,
	req *ListObjectsRequest) (names []string, err error) {
	err = rs.expBackoff(
		ctx,
		func() (err error) {
			names, err = rs.wrapped.ListObjectNames(ctx, req)
			return
		})

	return
}

func (rs *retryStorage) ListObjectInfo(
	ctx context.Context,
	req *ListObjectsRequest) (infos []*ItemInfo, err error) {
	err = rs.expBackoff(
		ctx,
		func() (err error) {
			infos, err = rs.wrapped.ListObjectInfo(ctx, req)
			return
		})

	return
}

func (rs *retryStorage) StatItem(
	ctx context.Context,
	id ResourceID) (info *ItemInfo, err error) {
	err = rs.expBackoff(
		ctx,
		func() (err error) {
			info, err = rs.wrapped.StatItem(ctx, id)
			return
		})

	return
}

func (rs *retryStorage) StatItems(
	ctx context.Context,
	ids []ResourceID) (infos []*ItemInfo, err error) {
	err = rs.expBackoff(
		ctx,
		func() (err error) {
			infos, err = rs.wrapped.StatItems(ctx, ids)
			return
		})

	return
}

func (rs *retryStorage) UpdateItems(
	ctx context.Context,
	updates []*ItemUpdate) (infos []*ItemInfo, err error) {
	err = rs.expBackoff(
		ctx,
		func() (err error) {
			infos, err = rs.wrapped.UpdateItems(ctx, updates)
			return
		})

	return
}

func (rs *retryStorage) WaitForBucketEmpty(
	ctx context.Context,
	bucketName string) (err error) {
	err = rs.expBackoff(
		ctx,
		func() (err error) {
			err = rs.wrapped.WaitForBucketEmpty(ctx, bucketName)
			return
		})

	return
}

func (rs *retryStorage) Close() (err error) {
	err = rs.wrapped.Close()
	return
}
