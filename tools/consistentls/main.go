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

// consistentls lists the contents of a bucket through a view that supplements
// backend listings with recently-created objects, demonstrating
// read-your-writes behavior over an eventually-consistent listing index.
//
// Example usage against GCS, with application default credentials:
//
//     consistentls --backend=gcs --project=my-project --bucket=my-bucket
//
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"golang.org/x/net/context"

	"github.com/jacobsa/timeutil"

	"github.com/jacobsa/objstore/oauthutil"
	"github.com/jacobsa/objstore/storage"
	"github.com/jacobsa/objstore/storage/consistent"
	"github.com/jacobsa/objstore/storage/gcsstore"
	"github.com/jacobsa/objstore/storage/s3store"
)

var fBackend = flag.String(
	"backend", "gcs", "Which backend to use: gcs or s3.")

var fProject = flag.String(
	"project", "", "GCS project ID. Required for --backend=gcs.")

var fKeyFile = flag.String(
	"key_file",
	"",
	"JSON service account key file. If unset, application default "+
		"credentials are used.")

var fEndpoint = flag.String(
	"s3.endpoint", "s3.amazonaws.com", "S3 endpoint host and port.")

var fAccessKey = flag.String("s3.access_key", "", "S3 access key ID.")
var fSecretKey = flag.String("s3.secret_key", "", "S3 secret access key.")

var fBucket = flag.String("bucket", "", "Bucket whose objects to list.")
var fPrefix = flag.String("prefix", "", "Restrict listings to this prefix.")
var fDelimiter = flag.String("delimiter", "/", "Listing delimiter.")

var fCreate = flag.String(
	"create",
	"",
	"If set, create an empty object with this name before listing.")

var fTTL = flag.Duration(
	"cache_ttl",
	consistent.DefaultCacheTTL,
	"How long cached entries supplement listings.")

func makeBackend(ctx context.Context) (s storage.Storage, err error) {
	switch *fBackend {
	case "gcs":
		if *fProject == "" {
			err = errors.New("You must set --project.")
			return
		}

		var client, clientErr = oauthutil.NewHTTPClient(
			ctx,
			*fKeyFile,
			gcsstore.Scope_FullControl)

		if clientErr != nil {
			err = fmt.Errorf("oauthutil.NewHTTPClient: %v", clientErr)
			return
		}

		if s, err = gcsstore.New(*fProject, client); err != nil {
			err = fmt.Errorf("gcsstore.New: %v", err)
			return
		}

		s = storage.NewRetryStorage(time.Minute, gcsstore.ShouldRetry, s)

	case "s3":
		cfg := &s3store.Config{
			Endpoint:        *fEndpoint,
			AccessKeyID:     *fAccessKey,
			SecretAccessKey: *fSecretKey,
			Secure:          true,
		}

		if s, err = s3store.New(cfg); err != nil {
			err = fmt.Errorf("s3store.New: %v", err)
			return
		}

		s = storage.NewRetryStorage(time.Minute, storage.DefaultShouldRetry, s)

	default:
		err = fmt.Errorf("unknown backend: %q", *fBackend)
		return
	}

	// Enable request logging if --objstore.debug is set.
	s = storage.NewDebugStorage(s)

	return
}

func run(ctx context.Context) (err error) {
	if *fBucket == "" {
		err = errors.New("You must set --bucket.")
		return
	}

	backend, err := makeBackend(ctx)
	if err != nil {
		return
	}

	defer backend.Close()

	// Wrap the backend so that listings reflect this process's own mutations
	// immediately.
	cache := consistent.NewDirectoryListCache(*fTTL, timeutil.RealClock())
	view := consistent.NewView(cache, backend)

	if *fCreate != "" {
		var id storage.ResourceID
		if id, err = storage.NewObjectID(*fBucket, *fCreate); err != nil {
			err = fmt.Errorf("NewObjectID: %v", err)
			return
		}

		req := &storage.CreateObjectRequest{ID: id}
		if err = view.CreateEmptyObject(ctx, req); err != nil {
			err = fmt.Errorf("CreateEmptyObject: %v", err)
			return
		}

		log.Printf("Created %s.", id)
	}

	names, err := view.ListObjectNames(
		ctx,
		&storage.ListObjectsRequest{
			Bucket:    *fBucket,
			Prefix:    *fPrefix,
			Delimiter: *fDelimiter,
		})

	if err != nil {
		err = fmt.Errorf("ListObjectNames: %v", err)
		return
	}

	for _, name := range names {
		fmt.Println(name)
	}

	return
}

func main() {
	flag.Parse()

	if err := run(context.Background()); err != nil {
		log.Fatalln(err)
	}
}
