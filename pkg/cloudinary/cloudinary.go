package cloudinary

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
)

// Config holds Cloudinary credentials (from env or config).
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
}

// Client wraps Cloudinary upload and deletion for listing media.
type Client interface {
	UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (url string, err error)
	// Delete removes the blob for the given public ID. Idempotent: deleting a
	// key that does not exist is success.
	Delete(ctx context.Context, publicID string) error
	// DeleteByURL derives the public ID from a stored URL and deletes it.
	DeleteByURL(ctx context.Context, url string) error
}

// Optimized image params for fast frontend loading
const imageEager = "q_auto,f_auto,w_800,c_fill"

var eagerAsyncFalse = false

// PublicIDFromURL derives the deletion key from a stored media URL. Uploads
// go into folders, and Cloudinary folds the folder into the public ID, so the
// key is everything after the delivery URL's /upload/ segment — minus any
// transformation ("q_auto,...") or version ("v123") segments and the file
// extension. Non-Cloudinary URLs fall back to the trailing path segment.
// Returns "" for empty or pathless URLs, which callers treat as
// nothing-to-delete.
func PublicIDFromURL(url string) string {
	trimmed := strings.TrimRight(url, "/")
	var rest string
	if idx := strings.Index(trimmed, "/upload/"); idx >= 0 {
		segs := strings.Split(trimmed[idx+len("/upload/"):], "/")
		for len(segs) > 1 && (isVersionSegment(segs[0]) || strings.Contains(segs[0], ",")) {
			segs = segs[1:]
		}
		rest = strings.Join(segs, "/")
	} else {
		idx := strings.LastIndex(trimmed, "/")
		if idx < 0 || idx == len(trimmed)-1 {
			return ""
		}
		rest = trimmed[idx+1:]
	}
	if dot := strings.LastIndex(rest, "."); dot > strings.LastIndex(rest, "/")+1 {
		rest = rest[:dot]
	}
	return rest
}

// isVersionSegment reports whether seg is a Cloudinary version marker ("v"
// followed by digits only).
func isVersionSegment(seg string) bool {
	if len(seg) < 2 || seg[0] != 'v' {
		return false
	}
	for _, r := range seg[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type clientImpl struct {
	cloudName string
	uploader  *uploader.API
}

// UploadImage uploads an image with eager optimizations (auto quality, format, resize).
func (c *clientImpl) UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (string, error) {
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:     folder,
		PublicID:   publicID,
		Eager:      imageEager,
		EagerAsync: &eagerAsyncFalse,
	})
	if err != nil {
		return "", err
	}
	return result.SecureURL, nil
}

func (c *clientImpl) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	result, err := c.uploader.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return err
	}
	// "not found" counts as success: the blob is gone either way.
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("cloudinary destroy %s: %s", publicID, result.Result)
	}
	return nil
}

func (c *clientImpl) DeleteByURL(ctx context.Context, url string) error {
	return c.Delete(ctx, PublicIDFromURL(url))
}

// NewClientFromParams builds a Client from Cloudinary cloud name, API key, and secret.
func NewClientFromParams(cloudName, apiKey, apiSecret string) (Client, error) {
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	up, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return &clientImpl{
		cloudName: cloudName,
		uploader:  up,
	}, nil
}
