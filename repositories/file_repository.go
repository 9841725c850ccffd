package repositories

import (
	"context"

	"github.com/yeremiapane/startup-platform/models"
	"gorm.io/gorm"
)

type FileRepository interface {
	Create(ctx context.Context, file *models.FileUpload) error
	FindByID(ctx context.Context, id string) (*models.FileUpload, error)
	FindByReference(ctx context.Context, referenceID string) ([]models.FileUpload, error)
	FindByReferenceAndType(ctx context.Context, referenceID string, fileType models.FileType) ([]models.FileUpload, error)
	FindByUser(ctx context.Context, userID string) ([]models.FileUpload, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type gormFileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &gormFileRepository{db: db}
}

func (r *gormFileRepository) Create(ctx context.Context, file *models.FileUpload) error {
	return translate(r.db.WithContext(ctx).Create(file).Error, "create file upload")
}

func (r *gormFileRepository) FindByID(ctx context.Context, id string) (*models.FileUpload, error) {
	var file models.FileUpload
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&file).Error; err != nil {
		return nil, translate(err, "find file upload")
	}
	return &file, nil
}

func (r *gormFileRepository) FindByReference(ctx context.Context, referenceID string) ([]models.FileUpload, error) {
	var files []models.FileUpload
	err := r.db.WithContext(ctx).Where("reference_id = ?", referenceID).Order("created_at DESC").Find(&files).Error
	return files, translate(err, "find files by reference")
}

func (r *gormFileRepository) FindByReferenceAndType(ctx context.Context, referenceID string, fileType models.FileType) ([]models.FileUpload, error) {
	var files []models.FileUpload
	err := r.db.WithContext(ctx).
		Where("reference_id = ? AND file_type = ?", referenceID, fileType).
		Order("created_at DESC").
		Find(&files).Error
	return files, translate(err, "find files by reference and type")
}

func (r *gormFileRepository) FindByUser(ctx context.Context, userID string) ([]models.FileUpload, error) {
	var files []models.FileUpload
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&files).Error
	return files, translate(err, "find files by user")
}

func (r *gormFileRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.FileUpload{})
	if res.Error != nil {
		return false, translate(res.Error, "delete file upload")
	}
	return res.RowsAffected > 0, nil
}
