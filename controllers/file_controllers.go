package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/startup-platform/middlewares"
	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/services"
	"github.com/yeremiapane/startup-platform/utils"
)

type FileController struct {
	files *services.FileService
}

func NewFileController(files *services.FileService) *FileController {
	return &FileController{files: files}
}

var dispositionName = strings.NewReplacer(`"`, "", `\`, "", "\r", "", "\n", "")

// UploadFile takes multipart fields file, fileType and referenceId
func (fc *FileController) UploadFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		utils.RespondAppError(c, utils.NewValidationError("File is required"))
		return
	}
	fileType, ok := models.ParseFileType(c.PostForm("fileType"))
	if !ok {
		utils.RespondAppError(c, utils.NewValidationError("Invalid file type"))
		return
	}

	body, err := header.Open()
	if err != nil {
		utils.RespondAppError(c, utils.NewInternalError("open multipart file", err))
		return
	}
	defer body.Close()

	upload, err := fc.files.Upload(c.Request.Context(), services.UploadInput{
		UserID:       middlewares.CurrentUserID(c),
		FileType:     fileType,
		ReferenceID:  c.PostForm("referenceId"),
		OriginalName: header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		Size:         header.Size,
		Body:         body,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "File uploaded", upload)
}

func (fc *FileController) GetFile(c *gin.Context) {
	upload, err := fc.files.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "File retrieved", upload)
}

// DownloadFile streams the stored body under its original name
func (fc *FileController) DownloadFile(c *gin.Context) {
	upload, f, err := fc.files.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	defer f.Close()

	size := upload.FileSize
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	c.DataFromReader(http.StatusOK, size, upload.ContentType, f, map[string]string{
		"Content-Disposition": `attachment; filename="` + dispositionName.Replace(upload.OriginalFileName) + `"`,
	})
}

func (fc *FileController) ListByReference(c *gin.Context) {
	files, err := fc.files.ListByReference(c.Request.Context(), c.Param("ref"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Files retrieved", files)
}

func (fc *FileController) ListByReferenceAndType(c *gin.Context) {
	fileType, ok := models.ParseFileType(c.Param("type"))
	if !ok {
		utils.RespondAppError(c, utils.NewValidationError("Invalid file type"))
		return
	}
	files, err := fc.files.ListByReferenceAndType(c.Request.Context(), c.Param("ref"), fileType)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Files retrieved", files)
}

func (fc *FileController) ListMyFiles(c *gin.Context) {
	files, err := fc.files.ListByUser(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "Files retrieved", files)
}

func (fc *FileController) DeleteFile(c *gin.Context) {
	if err := fc.files.Delete(c.Request.Context(), c.Param("id"), middlewares.CurrentUserID(c)); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	respondOK(c, "File deleted", nil)
}
