package models

type FileUpload struct {
	Base
	UserID           string   `gorm:"type:varchar(36);index;not null" json:"userId"`
	FileName         string   `gorm:"type:varchar(255);uniqueIndex;not null" json:"fileName"`
	OriginalFileName string   `gorm:"type:varchar(255);not null" json:"originalFileName"`
	ContentType      string   `gorm:"type:varchar(100);not null" json:"contentType"`
	FileSize         int64    `gorm:"not null" json:"fileSize"`
	FileType         FileType `gorm:"type:varchar(30);not null" json:"fileType"`
	ReferenceID      string   `gorm:"type:varchar(36);index" json:"referenceId,omitempty"`
}
