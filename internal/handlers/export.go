// export.go sends finished artifacts and failures back to the client.
//
// A successful conversion is a file download: Content-Disposition is set to
// attachment with the artifact's filename so browsers save converted.json
// instead of rendering it.
package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf2json/internal/models"
	"github.com/Shimizu-Technology/pdf2json/internal/services/emitter"
)

// responseDeliverer is an emitter.Deliverer that writes the artifact as the
// HTTP response. Once headers are out, delivered is true even if the body
// write fails, since nothing else can be sent on that response.
type responseDeliverer struct {
	c         *gin.Context
	delivered bool
}

func (d *responseDeliverer) Deliver(_ context.Context, a *emitter.Artifact) error {
	d.c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, a.Filename))
	d.c.Header("Content-Type", a.ContentType)
	d.c.Status(http.StatusOK)
	d.delivered = true

	if _, err := d.c.Writer.Write(a.Data); err != nil {
		return fmt.Errorf("failed to send %s: %w", a.Filename, err)
	}
	return nil
}

// statusFor maps a conversion failure kind to an HTTP status.
func statusFor(kind models.ErrorKind) int {
	switch kind {
	case models.KindInvalidInput, models.KindRead:
		return http.StatusBadRequest
	case models.KindFetch:
		return http.StatusBadGateway
	case models.KindParse:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// abortWithConversionError writes the standard ErrorResponse for err.
func abortWithConversionError(c *gin.Context, err error) {
	kind := models.KindOf(err)
	code := statusFor(kind)

	name := string(kind)
	if name == "" {
		name = "conversion_failed"
	}

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   name,
		Message: err.Error(),
		Code:    code,
	})
}
