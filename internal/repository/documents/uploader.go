// Package documents stores verification documents in object storage.
package documents

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"diving-mate-backend/internal/domain"
	"diving-mate-backend/pkg/apperror"
	"diving-mate-backend/pkg/security"
	"diving-mate-backend/pkg/security/antivirus"
	"diving-mate-backend/pkg/storage"

	"github.com/google/uuid"
)

// Config bounds what an upload may be
type Config struct {
	MaxBytes          int64
	ImageMaxDimension int
	ImageQuality      int
	Scanner           antivirus.Scanner // nil skips malware scanning
}

// Uploader validates a document, shrinks images and puts the result in an
// ObjectStore. It implements domain.DocumentUploader.
type Uploader struct {
	store          storage.ObjectStore
	cfg            Config
	securityLogger *security.SecurityLogger
	now            func() time.Time
}

func NewUploader(store storage.ObjectStore, cfg Config, securityLogger *security.SecurityLogger) *Uploader {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10 << 20
	}
	if cfg.ImageMaxDimension <= 0 {
		cfg.ImageMaxDimension = 2000
	}
	if cfg.ImageQuality <= 0 || cfg.ImageQuality > 100 {
		cfg.ImageQuality = 80
	}
	if securityLogger == nil {
		securityLogger = security.DefaultLogger()
	}
	return &Uploader{store: store, cfg: cfg, securityLogger: securityLogger, now: time.Now}
}

var _ domain.DocumentUploader = (*Uploader)(nil)

func (u *Uploader) Upload(ctx context.Context, userID, docType string, file domain.UploadedFile) (*domain.VerificationDocument, error) {
	if len(file.Data) == 0 {
		return nil, apperror.BadRequest("File is empty")
	}
	if int64(len(file.Data)) > u.cfg.MaxBytes {
		u.securityLogger.LogUploadRejected(ctx, userID, file.Filename, "size limit exceeded")
		return nil, apperror.BadRequest(fmt.Sprintf("File exceeds the %d MB limit", u.cfg.MaxBytes>>20))
	}

	check, err := storage.ValidateFile(file.Filename, file.Data, http.DetectContentType(file.Data))
	if err != nil {
		u.securityLogger.LogUploadRejected(ctx, userID, file.Filename, err.Error())
		return nil, apperror.New(http.StatusBadRequest, "Invalid file: "+err.Error(), err)
	}

	if err := u.scan(ctx, userID, file); err != nil {
		return nil, err
	}

	data, contentType, ext := file.Data, check.ContentType, check.Extension
	if check.IsImage {
		compressed, err := storage.CompressImage(data, u.cfg.ImageMaxDimension, u.cfg.ImageQuality)
		if err != nil {
			u.securityLogger.LogUploadRejected(ctx, userID, file.Filename, "undecodable image")
			return nil, apperror.New(http.StatusBadRequest, "Image could not be processed", err)
		}
		data, contentType, ext = compressed, "image/jpeg", ".jpg"
	}

	id := uuid.NewString()
	key := fmt.Sprintf("verifications/%s/%s/%s%s", userID, docType, id, ext)
	url, err := u.store.Put(ctx, key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	return &domain.VerificationDocument{
		ID:         id,
		Type:       docType,
		Name:       storage.SanitizeFilename(file.Filename),
		URL:        url,
		UploadedAt: u.now().UTC(),
	}, nil
}

// scan fails closed: a scanner error rejects the upload
func (u *Uploader) scan(ctx context.Context, userID string, file domain.UploadedFile) error {
	if u.cfg.Scanner == nil {
		return nil
	}
	res, err := u.cfg.Scanner.Scan(ctx, file.Data)
	if err != nil {
		u.securityLogger.LogUploadRejected(ctx, userID, file.Filename, "scan failed")
		return apperror.New(http.StatusServiceUnavailable, "Document scanning is unavailable, try again later", err)
	}
	if res.Infected {
		u.securityLogger.LogMalwareDetected(ctx, userID, file.Filename, res.Threat, res.Scanner)
		return apperror.BadRequest("File was rejected by the malware scanner")
	}
	return nil
}
