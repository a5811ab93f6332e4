// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

package article

import (
	"net/url"
	"strings"

	"github.com/samber/oops"
)

// URL is a validated absolute http(s) URL. Construct through ParseURL only.
type URL string

// ParseURL validates a raw article URL.
func ParseURL(raw string) (URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", oops.Code(CodeInvalidURL).
			With("url", raw).
			Wrap(err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", oops.Code(CodeInvalidURL).
			With("url", raw).
			Errorf("url must be absolute http or https")
	}
	return URL(raw), nil
}

func (u URL) String() string { return string(u) }

// Source classifies where a clipped page came from, derived from its
// hostname.
type Source string

// Known sources. Everything unrecognized is SourceOther.
const (
	SourceTwitter Source = "twitter"
	SourceQiita   Source = "qiita"
	SourceZenn    Source = "zenn"
	SourceHatena  Source = "hatena"
	SourceOther   Source = "other"
)

// SourceFromURL derives the source from a URL's hostname. Unparseable
// input classifies as SourceOther rather than failing; source is cosmetic.
func SourceFromURL(raw string) Source {
	u, err := url.Parse(raw)
	if err != nil {
		return SourceOther
	}

	switch host := u.Hostname(); {
	case host == "twitter.com" || host == "x.com":
		return SourceTwitter
	case host == "qiita.com":
		return SourceQiita
	case host == "zenn.dev":
		return SourceZenn
	case strings.HasSuffix(host, ".hateblo.jp") || host == "hatenablog.com" || host == "hatenablog.jp":
		return SourceHatena
	default:
		return SourceOther
	}
}
