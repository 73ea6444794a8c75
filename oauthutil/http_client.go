// Copyright 2015 Google Inc. All Rights Reserved.
// Author: jacobsa@google.com (Aaron Jacobs)

// Utility code for working with OAuth. Subject to interface change.
package oauthutil

import (
	"fmt"
	"io/ioutil"
	"net/http"

	"golang.org/x/net/context"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"

	"github.com/jacobsa/objstore/httputil"
)

// NewHTTPClient sets up an authenticated HTTP client with the given OAuth
// scope. If keyFile is non-empty it must name a JSON service account key
// file, which is used directly. Otherwise application default credentials
// are consulted.
//
// The client's transport is additionally wrapped via
// httputil.DebuggingRoundTripper.
func NewHTTPClient(
	ctx context.Context,
	keyFile string,
	scope string) (client *http.Client, err error) {
	var tokenSrc oauth2.TokenSource

	if keyFile != "" {
		var contents []byte
		if contents, err = ioutil.ReadFile(keyFile); err != nil {
			err = fmt.Errorf("ReadFile(%q): %v", keyFile, err)
			return
		}

		var jwtConfig *jwt.Config
		if jwtConfig, err = google.JWTConfigFromJSON(contents, scope); err != nil {
			err = fmt.Errorf("JWTConfigFromJSON: %v", err)
			return
		}

		tokenSrc = jwtConfig.TokenSource(ctx)
	} else {
		if tokenSrc, err = google.DefaultTokenSource(ctx, scope); err != nil {
			err = fmt.Errorf("DefaultTokenSource: %v", err)
			return
		}
	}

	client = &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.ReuseTokenSource(nil, tokenSrc),
			Base:   httputil.DebuggingRoundTripper(http.DefaultTransport),
		},
	}

	return
}
