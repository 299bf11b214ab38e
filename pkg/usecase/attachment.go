package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rolodex/pkg/domain/interfaces"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
	"github.com/secmon-lab/rolodex/pkg/utils/logging"
)

// AttachmentUseCase uploads files for image and file fields
type AttachmentUseCase struct {
	uploader interfaces.Uploader
}

func NewAttachmentUseCase(uploader interfaces.Uploader) *AttachmentUseCase {
	return &AttachmentUseCase{uploader: uploader}
}

// Upload stores data and sets the attachment on the session's field. On failure the field
// keeps its previous value, a notice naming the field is recorded on the session and an
// error wrapping model.ErrUploadFailed is returned. There is no retry.
func (uc *AttachmentUseCase) Upload(ctx context.Context, session *EditSession, fieldName string, data []byte, filename string) (*model.AttachmentRef, error) {
	fd, ok := session.Schema().Field(fieldName)
	if !ok {
		return nil, goerr.Wrap(model.ErrUnknownField, "field not found in schema",
			goerr.V(model.FieldNameKey, fieldName))
	}
	if fd.Type != types.FieldTypeImage && fd.Type != types.FieldTypeFile {
		return nil, goerr.Wrap(model.ErrInvalidFieldType, "field does not take attachments",
			goerr.V(model.FieldNameKey, fieldName),
			goerr.V(model.FieldTypeKey, fd.Type))
	}

	attachment, err := uc.upload(ctx, data, filename)
	if err != nil {
		logging.From(ctx).Error("attachment upload failed",
			slog.String(model.FieldNameKey, fieldName),
			slog.String(model.FilenameKey, filename),
			slog.Any("error", err))

		label := fd.Label
		if label == "" {
			label = fd.Name
		}
		session.addNotice(model.Notice{
			Field:     fd.Name,
			Label:     label,
			Message:   fmt.Sprintf("Failed to upload %q for %s", filename, label),
			CreatedAt: time.Now(),
		})
		return nil, goerr.Wrap(model.ErrUploadFailed, "failed to upload attachment",
			goerr.V(model.FieldNameKey, fieldName),
			goerr.V(model.FilenameKey, filename),
			goerr.V(CauseKey, err.Error()))
	}

	ref := &model.AttachmentRef{ID: attachment.ID, URL: attachment.URL, Filename: filename}
	if err := session.Apply(ctx, fieldName, ref); err != nil {
		return nil, err
	}
	return ref, nil
}

func (uc *AttachmentUseCase) upload(ctx context.Context, data []byte, filename string) (*model.Attachment, error) {
	if uc.uploader == nil {
		return nil, goerr.New("no uploader configured")
	}
	attachment, err := uc.uploader.UploadFile(ctx, data, filename)
	if err != nil {
		return nil, err
	}
	if attachment == nil || attachment.ID == "" {
		return nil, goerr.New("uploader returned no attachment id")
	}
	return attachment, nil
}
