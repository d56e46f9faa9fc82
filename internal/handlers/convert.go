// convert.go handles the conversion API.
//
// POST /api/v1/convert accepts the PDF in any of four shapes, picked from
// the request:
//   - ?url=...                       fetched by the server
//   - Content-Type: application/pdf  raw bytes in the body
//   - multipart/form-data            uploaded file in field "file"
//   - application/json               {"url": "..."}
package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Shimizu-Technology/pdf2json/internal/models"
	"github.com/Shimizu-Technology/pdf2json/internal/services/source"
)

// multipartOverhead leaves room for boundaries and headers around the file.
const multipartOverhead = 1 << 20

// ConvertPDF converts a PDF to converted.json and returns it as a download.
// POST /api/v1/convert
func (h *Handler) ConvertPDF(c *gin.Context) {
	src, cleanup, err := h.sourceFromRequest(c)
	if err != nil {
		abortWithConversionError(c, err)
		return
	}
	defer cleanup()

	id := uuid.NewString()
	c.Header("X-Conversion-ID", id)

	artifact, err := h.Converter.ConvertID(c.Request.Context(), id, src)
	if err != nil {
		h.Log.Warn().Err(err).Str("conversion_id", id).Msg("conversion failed")
		abortWithConversionError(c, err)
		return
	}

	d := &responseDeliverer{c: c}
	if err := d.Deliver(c.Request.Context(), artifact); err != nil {
		h.Log.Error().Err(err).Str("conversion_id", id).Msg("Error sending converted.json")
	}
}

// sourceFromRequest picks the Source shape from the request. The returned
// cleanup must be called once the conversion is finished.
func (h *Handler) sourceFromRequest(c *gin.Context) (source.Source, func(), error) {
	noop := func() {}

	if u := c.Query("url"); u != "" {
		return source.URL(u), noop, nil
	}

	switch c.ContentType() {
	case source.PDFContentType:
		body := http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxPDFSize)
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, noop, models.NewConversionError(models.KindRead, "read body", err)
		}
		return source.Bytes(data), noop, nil

	case gin.MIMEMultipartPOSTForm:
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxPDFSize+multipartOverhead)
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, noop, models.NewConversionError(models.KindRead, "read upload", err)
			}
			return nil, noop, models.NewConversionError(models.KindInvalidInput, "upload",
				fmt.Errorf("no file provided, upload it with the field name 'file'"))
		}
		return source.File{R: file, Name: header.Filename}, func() { file.Close() }, nil

	case gin.MIMEJSON:
		var req models.ConvertRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, noop, models.NewConversionError(models.KindInvalidInput, "decode body", err)
		}
		return source.URLRef{URL: req.URL}, noop, nil
	}

	return nil, noop, models.NewConversionError(models.KindInvalidInput, "convert",
		fmt.Errorf("unsupported request: send application/pdf, multipart/form-data, application/json or ?url="))
}
