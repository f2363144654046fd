package service

import (
	"context"
	"exam_portal_backend/internal/config"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageProvider resolves stored object names to URLs a client can fetch.
// Question and option images are uploaded by the authoring subsystem; the
// exam core only serves links to them.
type StorageProvider interface {
	GetURL(ctx context.Context, filename string) string
}

type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) GetURL(ctx context.Context, filename string) string {
	return "/uploads/" + filename
}

type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

// GetURL presigns a short-lived download link so exam assets stay behind
// the bucket's access policy.
func (p *MinioStorageProvider) GetURL(ctx context.Context, filename string) string {
	u, err := p.Client.PresignedGetObject(ctx, p.Config.MinioBucket, filename, 15*time.Minute, url.Values{})
	if err != nil {
		scheme := "http"
		if p.Config.MinioUseSSL {
			scheme = "https"
		}
		return fmt.Sprintf("%s://%s/%s/%s", scheme, p.Config.MinioEndpoint, p.Config.MinioBucket, filename)
	}
	return u.String()
}

type StorageService struct {
	Provider StorageProvider
}

func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider

	switch cfg.Storage.Type {
	case "minio":
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err != nil {
			provider = &LocalStorageProvider{Config: &cfg.Storage}
		} else {
			provider = p
		}
	default:
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}

	return &StorageService{Provider: provider}
}

// ImageURL resolves an image reference for display, returning "" when the
// question or option has no image.
func (s *StorageService) ImageURL(ctx context.Context, filename string) string {
	if filename == "" {
		return ""
	}
	return s.Provider.GetURL(ctx, filename)
}
