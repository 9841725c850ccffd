package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/startup-platform/models"
	"github.com/yeremiapane/startup-platform/utils"
)

func upload(fileType models.FileType, name, contentType string, body []byte) UploadInput {
	return UploadInput{
		FileType:     fileType,
		OriginalName: name,
		ContentType:  contentType,
		Size:         int64(len(body)),
		Body:         bytes.NewReader(body),
	}
}

func TestUploadDownloadDelete(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	owner := h.user(t, "owner@example.com", models.RoleStartup)
	other := h.user(t, "other@example.com", models.RoleInvestor)

	in := upload(models.FilePitchDeck, "deck.pdf", "application/pdf; charset=binary", []byte("%PDF-1.4 pitch"))
	in.UserID = owner.ID
	in.ReferenceID = "startup-1"
	stored, err := h.files.Upload(ctx, in)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(stored.FileName, ".pdf"))
	assert.NotEqual(t, "deck.pdf", stored.FileName)
	assert.Equal(t, "deck.pdf", stored.OriginalFileName)
	assert.Equal(t, "application/pdf", stored.ContentType)
	assert.Equal(t, int64(14), stored.FileSize)

	meta, f, err := h.files.Open(ctx, stored.ID)
	require.NoError(t, err)
	body, err := io.ReadAll(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 pitch", string(body))
	assert.Equal(t, stored.ID, meta.ID)

	byRef, err := h.files.ListByReferenceAndType(ctx, "startup-1", models.FilePitchDeck)
	require.NoError(t, err)
	assert.Len(t, byRef, 1)
	byRef, err = h.files.ListByReferenceAndType(ctx, "startup-1", models.FileStartupLogo)
	require.NoError(t, err)
	assert.Empty(t, byRef)

	err = h.files.Delete(ctx, stored.ID, other.ID)
	assert.Equal(t, utils.KindForbidden, utils.KindOf(err))

	require.NoError(t, h.files.Delete(ctx, stored.ID, owner.ID))
	_, _, err = h.files.Open(ctx, stored.ID)
	assert.True(t, utils.IsNotFound(err))
	mine, err := h.files.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestUploadValidation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	owner := h.user(t, "owner@example.com", models.RoleStartup)

	tests := []struct {
		name    string
		in      UploadInput
		message string
	}{
		{"pdf as logo", upload(models.FileStartupLogo, "logo.pdf", "application/pdf", []byte("x")),
			"Invalid image type. Allowed: JPG, PNG, GIF, WebP"},
		{"image as deck", upload(models.FilePitchDeck, "deck.png", "image/png", []byte("x")),
			"Invalid document type. Only PDF allowed"},
		{"empty", upload(models.FileProfilePhoto, "me.png", "image/png", nil),
			"Cannot store empty file"},
		{"too large image", upload(models.FileProfilePhoto, "me.png", "image/png", make([]byte, MaxImageSize+1)),
			"Image size exceeds maximum allowed (5MB)"},
		{"unknown type", upload(models.FileType("AVATAR"), "me.png", "image/png", []byte("x")),
			"Unknown file type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.UserID = owner.ID
			_, err := h.files.Upload(ctx, tt.in)
			assert.Equal(t, utils.KindValidation, utils.KindOf(err))
			assert.EqualError(t, err, tt.message)
		})
	}
}

func TestUploadEnforcesActualSize(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	owner := h.user(t, "owner@example.com", models.RoleStartup)

	in := upload(models.FileInvestorPhoto, "me.jpg", "image/jpeg", make([]byte, MaxImageSize+10))
	in.UserID = owner.ID
	in.Size = 100
	_, err := h.files.Upload(ctx, in)
	assert.EqualError(t, err, "Image size exceeds maximum allowed (5MB)")

	mine, err := h.files.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}
