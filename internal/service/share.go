package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/and161185/pocketfile/internal/model"
	"github.com/and161185/pocketfile/internal/repository"
)

// QREncoder renders content as an image data URL.
type QREncoder interface {
	DataURL(content string) (string, error)
}

// ShareService produces public download links for stored files.
type ShareService interface {
	// Link returns the download URL of file id under baseURL and its QR code.
	Link(ctx context.Context, id int64, baseURL string) (model.ShareLink, error)
}

type ShareServiceImpl struct {
	files repository.FileRepository
	qr    QREncoder
}

// NewShareService constructs ShareService over file metadata and a QR encoder.
func NewShareService(files repository.FileRepository, qr QREncoder) *ShareServiceImpl {
	return &ShareServiceImpl{files: files, qr: qr}
}

// Link builds the public download URL of a file and renders it as a QR code.
func (s *ShareServiceImpl) Link(ctx context.Context, id int64, baseURL string) (model.ShareLink, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return model.ShareLink{}, invalid("invalid base url %q", baseURL)
	}

	f, err := s.files.Get(ctx, id)
	if err != nil {
		return model.ShareLink{}, err
	}

	link := strings.TrimRight(base.String(), "/") + f.FilePath
	img, err := s.qr.DataURL(link)
	if err != nil {
		return model.ShareLink{}, fmt.Errorf("rendering qr code: %w", err)
	}
	return model.ShareLink{DownloadURL: link, QRCode: img}, nil
}
