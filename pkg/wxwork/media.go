package wxwork

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bft-labs/wxnotify/internal/api"
	"github.com/bft-labs/wxnotify/pkg/log"
)

// mediaTypeFile is the upload type used for image message attachments.
const mediaTypeFile = "file"

type mediaSource interface {
	UploadMedia(ctx context.Context, accessToken string, u api.Upload) (api.UploadResponse, error)
}

// MediaUploader uploads local files as temporary media and returns the
// media id that image messages reference.
type MediaUploader struct {
	tokens   *TokenProvider
	source   mediaSource
	boundary func() string
	logger   log.Logger
}

// Upload sends the file at path and returns its media id.
//
// An unreadable file yields ErrIO before any network call. Token errors
// are those of TokenProvider.Resolve. A failed upload or a non-zero errcode
// yields ErrUpload.
func (u *MediaUploader) Upload(ctx context.Context, path string, auth Auth) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrIO, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrIO, path)
	}

	token, err := u.tokens.Resolve(ctx, auth)
	if err != nil {
		return "", err
	}

	resp, err := u.source.UploadMedia(ctx, token, api.Upload{
		MediaType: mediaTypeFile,
		Filename:  filepath.Base(path),
		Boundary:  u.boundary(),
		Content:   f,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpload, err)
	}
	if !resp.OK() {
		return "", fmt.Errorf("%w: %w", ErrUpload, &RemoteError{Op: "upload", Code: resp.Code(), Msg: resp.ErrMsg})
	}
	if resp.MediaID == "" {
		return "", fmt.Errorf("%w: response has no media_id", ErrUpload)
	}

	u.logger.Debug("media uploaded",
		log.String("file", filepath.Base(path)),
		log.Int("size", int(info.Size())),
	)
	return resp.MediaID, nil
}
