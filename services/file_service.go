package services

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/repositories"
	"github.com/yeremiapane/startup-platform/storage"
	"github.com/yeremiapane/startup-platform/utils"
)

const (
	MaxImageSize    = 5 << 20
	MaxDocumentSize = 20 << 20
)

var (
	imageTypes = map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/gif":  true,
		"image/webp": true,
	}
	documentTypes = map[string]bool{
		"application/pdf": true,
	}
)

// UploadInput describes one uploaded file. Size is the declared size.
type UploadInput struct {
	UserID       string
	FileType     models.FileType
	ReferenceID  string
	OriginalName string
	ContentType  string
	Size         int64
	Body         io.Reader
}

type FileService struct {
	repo  repositories.FileRepository
	store *storage.Local
}

func NewFileService(repo repositories.FileRepository, store *storage.Local) *FileService {
	return &FileService{repo: repo, store: store}
}

func (s *FileService) Upload(ctx context.Context, in UploadInput) (*models.FileUpload, error) {
	if in.UserID == "" {
		return nil, utils.NewUnauthorizedError("Authentication required")
	}
	contentType := normalizeContentType(in.ContentType)
	if err := validateUpload(in.FileType, contentType, in.Size); err != nil {
		return nil, err
	}

	limit := int64(MaxImageSize)
	if in.FileType == models.FilePitchDeck {
		limit = MaxDocumentSize
	}
	name := storage.NewName(in.OriginalName)
	written, err := s.store.Save(name, io.LimitReader(in.Body, limit+1))
	if err != nil {
		return nil, utils.NewInternalError("store file", err)
	}
	if written > limit || written == 0 {
		s.discard(name)
		if written == 0 {
			return nil, utils.NewValidationError("Cannot store empty file")
		}
		return nil, sizeError(in.FileType)
	}

	upload := &models.FileUpload{
		UserID:           in.UserID,
		FileName:         name,
		OriginalFileName: utils.SanitizeText(baseName(in.OriginalName)),
		ContentType:      contentType,
		FileSize:         written,
		FileType:         in.FileType,
		ReferenceID:      in.ReferenceID,
	}
	if err := s.repo.Create(ctx, upload); err != nil {
		s.discard(name)
		return nil, utils.NewInternalError("save file record", err)
	}
	return upload, nil
}

func (s *FileService) Get(ctx context.Context, id string) (*models.FileUpload, error) {
	upload, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, utils.NewNotFoundError("File not found")
	}
	if err != nil {
		return nil, utils.NewInternalError("find file", err)
	}
	return upload, nil
}

// Open returns the record and its body; the caller closes the file.
func (s *FileService) Open(ctx context.Context, id string) (*models.FileUpload, *os.File, error) {
	upload, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.store.Open(upload.FileName)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, utils.NewNotFoundError("File not found")
	}
	if err != nil {
		return nil, nil, utils.NewInternalError("open file", err)
	}
	return upload, f, nil
}

func (s *FileService) ListByReference(ctx context.Context, referenceID string) ([]models.FileUpload, error) {
	files, err := s.repo.FindByReference(ctx, referenceID)
	if err != nil {
		return nil, utils.NewInternalError("list files", err)
	}
	return files, nil
}

func (s *FileService) ListByReferenceAndType(ctx context.Context, referenceID string, fileType models.FileType) ([]models.FileUpload, error) {
	files, err := s.repo.FindByReferenceAndType(ctx, referenceID, fileType)
	if err != nil {
		return nil, utils.NewInternalError("list files", err)
	}
	return files, nil
}

func (s *FileService) ListByUser(ctx context.Context, userID string) ([]models.FileUpload, error) {
	files, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, utils.NewInternalError("list files", err)
	}
	return files, nil
}

// Delete removes the record and then the stored body. Only the uploader may
// delete a file.
func (s *FileService) Delete(ctx context.Context, id, userID string) error {
	upload, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if upload.UserID != userID {
		return utils.NewForbiddenError("You can only delete your own files")
	}
	if _, err := s.repo.Delete(ctx, id); err != nil {
		return utils.NewInternalError("delete file record", err)
	}
	s.discard(upload.FileName)
	return nil
}

func (s *FileService) discard(name string) {
	if err := s.store.Delete(name); err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{"file_name": name}).WithError(err).Error("remove stored file")
	}
}

func validateUpload(fileType models.FileType, contentType string, size int64) error {
	if !fileType.Valid() {
		return utils.NewValidationError("Unknown file type")
	}
	if size == 0 {
		return utils.NewValidationError("Cannot store empty file")
	}
	if fileType.IsImage() {
		if !imageTypes[contentType] {
			return utils.NewValidationError("Invalid image type. Allowed: JPG, PNG, GIF, WebP")
		}
		if size > MaxImageSize {
			return sizeError(fileType)
		}
		return nil
	}
	if !documentTypes[contentType] {
		return utils.NewValidationError("Invalid document type. Only PDF allowed")
	}
	if size > MaxDocumentSize {
		return sizeError(fileType)
	}
	return nil
}

func sizeError(fileType models.FileType) error {
	if fileType.IsImage() {
		return utils.NewValidationError("Image size exceeds maximum allowed (5MB)")
	}
	return utils.NewValidationError("Document size exceeds maximum allowed (20MB)")
}

func normalizeContentType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

func baseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return name
}
