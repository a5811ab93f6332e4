// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

package article

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Domain error codes for the clipping domain. Together with the auth codes
// they form the closed taxonomy the HTTP layer maps to status codes.
const (
	CodeInvalidURL          = "INVALID_URL"
	CodeInvalidTagName      = "INVALID_TAG_NAME"
	CodeArticleNotFound     = "ARTICLE_NOT_FOUND"
	CodeArticleExists       = "ARTICLE_ALREADY_EXISTS"
	CodeTagNotFound         = "TAG_NOT_FOUND"
	CodeTagExists           = "TAG_ALREADY_EXISTS"
	CodeMetadataFetchFailed = "METADATA_FETCH_FAILED"
	CodeStorageError        = "STORAGE_ERROR"
)
