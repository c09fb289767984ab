package yadisk

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/oshokin/yadisk-grabber/internal/utils"
)

var (
	// ErrEmptyPublicKey indicates that no public key or link was given.
	ErrEmptyPublicKey = errors.New("public key is empty")
	// ErrUnsupportedLink indicates a URL that is not a Yandex Disk public link.
	ErrUnsupportedLink = errors.New("not a Yandex Disk public link")
)

// publicLinkPattern matches public links such as https://disk.yandex.ru/d/abc123/photos.
// The "key" group is the link of the shared root, the "path" group is an optional location inside it.
//
//nolint:gochecknoglobals,lll // Compiled once and never modified.
var publicLinkPattern = regexp.MustCompile(
	`^(?P<key>https?://(?:www\.)?(?:disk\.yandex\.[a-z]{2,3}(?:\.[a-z]{2})?|disk\.360\.yandex\.[a-z]{2,3}|yadi\.sk)/(?:d|i)/[^/?#]+)(?P<path>/[^?#]*)?`,
)

// NewPublicResourceRef builds a reference from user input.
// publicKey is either a raw public key or a public link; a link may carry a location
// inside the shared resource, which is used when resourcePath is empty.
func NewPublicResourceRef(publicKey, resourcePath string) (PublicResourceRef, error) {
	publicKey = strings.TrimSpace(publicKey)
	if publicKey == "" {
		return PublicResourceRef{}, ErrEmptyPublicKey
	}

	if !strings.Contains(publicKey, "://") {
		// Raw keys contain "+", which form decoding turns into a space.
		return PublicResourceRef{
			PublicKey: strings.ReplaceAll(publicKey, " ", "+"),
			Path:      normalizePath(resourcePath),
		}, nil
	}

	key := utils.ExtractNamedGroup(publicLinkPattern, "key", publicKey)
	if key == "" {
		return PublicResourceRef{}, fmt.Errorf("%w: %s", ErrUnsupportedLink, publicKey)
	}

	if strings.TrimSpace(resourcePath) == "" {
		linkPath := utils.ExtractNamedGroup(publicLinkPattern, "path", publicKey)

		unescaped, err := url.PathUnescape(linkPath)
		if err == nil {
			linkPath = unescaped
		}

		resourcePath = linkPath
	}

	return PublicResourceRef{
		PublicKey: key,
		Path:      normalizePath(resourcePath),
	}, nil
}
