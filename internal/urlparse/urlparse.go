// Package urlparse turns a missed media request path into a candidate
// original image plus the requested variant dimensions. It is pure string
// work: no file system access happens here.
package urlparse

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// <base>-<width>x<height>.<ext>, width required digits, height optional,
// extension alphanumeric.
var sizedPathRe = regexp.MustCompile(`^(.+)-([0-9]+)x([0-9]*)\.([a-zA-Z0-9]+)$`)

// Request describes a parsed sized-variant request.
type Request struct {
	// RelPath is the original file's path relative to the upload root,
	// always slash-separated, e.g. "2023/01/photo.jpg".
	RelPath string
	// OriginalPath is the absolute file system path of the original.
	OriginalPath string
	// OriginalURL is the public URL of the original.
	OriginalURL string
	// VariantRelPath is the requested variant relative to the upload root.
	VariantRelPath string
	Width          int
	Height         int // 0 when the height part was empty
	Extension      string
}

type Parser struct {
	uploadRoot string
	baseURL    string
	basePath   string // URL path portion of baseURL
}

func New(uploadRoot, baseURL string) (*Parser, error) {
	if uploadRoot == "" || baseURL == "" {
		return nil, fmt.Errorf("upload root and base url must be set")
	}
	basePath := baseURL
	// baseURL may be absolute ("https://host/media") or a bare path ("/media")
	if i := strings.Index(baseURL, "://"); i >= 0 {
		rest := baseURL[i+3:]
		if j := strings.Index(rest, "/"); j >= 0 {
			basePath = rest[j:]
		} else {
			basePath = "/"
		}
	}
	return &Parser{
		uploadRoot: filepath.Clean(uploadRoot),
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		basePath:   strings.TrimSuffix(basePath, "/"),
	}, nil
}

// Parse matches requestPath against the sized-variant pattern. The second
// return value is false when the path is not applicable: not under the
// media prefix, no dimension suffix, or escaping the upload root. That is
// a pass-through, not an error.
func (p *Parser) Parse(requestPath string) (*Request, bool) {
	rel, ok := strings.CutPrefix(requestPath, p.basePath+"/")
	if !ok {
		return nil, false
	}

	m := sizedPathRe.FindStringSubmatch(rel)
	if m == nil {
		return nil, false
	}
	base, widthStr, heightStr, ext := m[1], m[2], m[3], m[4]

	width, err := strconv.Atoi(widthStr)
	if err != nil {
		return nil, false
	}
	height := 0
	if heightStr != "" {
		if height, err = strconv.Atoi(heightStr); err != nil {
			return nil, false
		}
	}

	origRel := base + "." + ext
	// Reject anything that could climb out of the upload root.
	if !filepath.IsLocal(filepath.FromSlash(origRel)) {
		return nil, false
	}

	return &Request{
		RelPath:        origRel,
		OriginalPath:   filepath.Join(p.uploadRoot, filepath.FromSlash(origRel)),
		OriginalURL:    p.baseURL + "/" + origRel,
		VariantRelPath: rel,
		Width:          width,
		Height:         height,
		Extension:      ext,
	}, true
}

// AbsPath resolves a slash-separated relative media path against the
// upload root.
func (p *Parser) AbsPath(rel string) string {
	return filepath.Join(p.uploadRoot, filepath.FromSlash(rel))
}

// BasePath is the URL path portion of the configured base URL, without a
// trailing slash.
func (p *Parser) BasePath() string {
	return p.basePath
}
