package attachments

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sitecrew/access"
	"sitecrew/apperr"
	"sitecrew/controller"
	"sitecrew/dto"
	"sitecrew/middleware"
	"sitecrew/model"
)

func AttachmentsController(router *gin.Engine, deps *controller.Deps) {
	router.POST("/tasks/:id/attachments", append(deps.Auth(middleware.Require(access.CanManageChecklists)), func(c *gin.Context) {
		CreateAttachment(c, deps)
	})...)
	router.GET("/tasks/:id/attachments", append(deps.Auth(), func(c *gin.Context) {
		ListAttachments(c, deps)
	})...)
}

// CreateAttachment records the file and returns a presigned PUT URL the
// client uploads the bytes to.
func CreateAttachment(c *gin.Context, deps *controller.Deps) {
	if deps.Files == nil {
		apperr.Respond(c, apperr.NotFoundf("file storage is not configured"))
		return
	}
	var req dto.CreateAttachmentRequest
	if !controller.Bind(c, &req) {
		return
	}

	taskID := c.Param("id")
	a := &model.Attachment{
		TaskID:      taskID,
		ObjectKey:   deps.Files.ObjectKey(taskID, req.FileName),
		FileName:    req.FileName,
		ContentType: req.ContentType,
		UploadedBy:  middleware.UserID(c),
	}
	uploadURL, err := deps.Files.PresignUpload(c, a.ObjectKey, a.ContentType)
	if err != nil {
		apperr.Respond(c, apperr.New(apperr.Network, "failed to prepare upload", err))
		return
	}
	if err := deps.Store.CreateAttachment(c, a); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "attachment": a, "upload_url": uploadURL})
}

type withURL struct {
	model.Attachment
	URL string `json:"url,omitempty"`
}

func ListAttachments(c *gin.Context, deps *controller.Deps) {
	rows, err := deps.Store.ListAttachments(c, c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	out := make([]withURL, 0, len(rows))
	for _, a := range rows {
		item := withURL{Attachment: a}
		if deps.Files != nil {
			url, err := deps.Files.PresignDownload(c, a.ObjectKey)
			if err != nil {
				deps.Logger.Warn("failed to presign download", zap.String("key", a.ObjectKey), zap.Error(err))
			}
			item.URL = url
		}
		out = append(out, item)
	}
	controller.OK(c, http.StatusOK, "attachments", out)
}
