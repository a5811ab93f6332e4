// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

// Package article provides the clipping domain for Clipmark: articles,
// tags, and the service that clips pages by URL, scrapes their metadata,
// and manages the read/memo/tag state.
//
// Article and Tag values should be created through NewArticle and NewTag;
// transition methods (MarkRead, WithMemo, WithTags, ...) return copies and
// never mutate their receiver. Persistence is behind ArticleRepository and
// TagRepository; metadata scraping is behind MetadataFetcher.
package article
