// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package submission

import (
	"fmt"

	"github.com/taibuivan/arxsub/internal/platform/apperr"
)

// Licenses maps every recognised license URI to its display name.
var Licenses = map[string]string{
	"http://creativecommons.org/licenses/by/4.0/":         "Creative Commons Attribution 4.0 International",
	"http://creativecommons.org/licenses/by-sa/4.0/":      "Creative Commons Attribution-ShareAlike 4.0 International",
	"http://creativecommons.org/licenses/by-nc-sa/4.0/":   "Creative Commons Attribution-NonCommercial-ShareAlike 4.0 International",
	"http://creativecommons.org/licenses/by-nc-nd/4.0/":   "Creative Commons Attribution-NonCommercial-NoDerivatives 4.0 International",
	"http://arxiv.org/licenses/nonexclusive-distrib/1.0/": "arXiv.org perpetual, non-exclusive license to distribute this article",
	"http://creativecommons.org/publicdomain/zero/1.0/":   "Creative Commons Public Domain Declaration",
}

// LicenseFor resolves uri to a [License]. Unknown URIs are unprocessable.
func LicenseFor(uri string) (License, error) {
	name, ok := Licenses[uri]
	if !ok {
		return License{}, apperr.Unprocessable(fmt.Sprintf("Unrecognized license %q", uri))
	}
	return License{URI: uri, Name: name}, nil
}
