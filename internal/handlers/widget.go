// widget.go serves the one-button converter.
//
// GET  /widget?url=...  renders a page with a single "Convert to JSON" button
// POST /widget/convert  is what the button submits
//
// The page is bound to its URL when it is rendered: the form carries a
// widget token naming that URL, and the trigger converts whatever the token
// names. A bare url field is never fetched.
//
// The button never shows an error. On success the browser receives
// converted.json as a download; on failure the response is 204 No Content,
// which leaves the page exactly as it was. The reason goes to the server log.
package handlers

import (
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf2json/internal/middleware"
	"github.com/Shimizu-Technology/pdf2json/internal/models"
	"github.com/Shimizu-Technology/pdf2json/internal/services/converter"
	"github.com/Shimizu-Technology/pdf2json/internal/services/source"
)

// widgetTokenTTL bounds how long a rendered widget page stays usable.
const widgetTokenTTL = 24 * time.Hour

// Go Pattern: html/template escapes the token for the attribute context, so
// nothing in the query string can inject markup.
var widgetPage = template.Must(template.New("widget").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>PDF to JSON</title>
  <style>
    body { margin: 0; font-family: system-ui, sans-serif; }
    form { padding: 16px; }
    button { padding: 8px 16px; font-size: 14px; cursor: pointer; }
  </style>
</head>
<body>
  <form method="POST" action="/widget/convert">
    <input type="hidden" name="token" value="{{.Token}}">
    <button type="submit">Convert to JSON</button>
  </form>
</body>
</html>`))

// widgetRequest is what the widget form posts.
type widgetRequest struct {
	Token string `form:"token" json:"token"`
}

// ServeWidget renders the widget page bound to ?url=.
// GET /widget
func (h *Handler) ServeWidget(c *gin.Context) {
	token, err := middleware.GenerateWidgetToken(c.Query("url"), h.WidgetSecret, widgetTokenTTL)
	if err != nil {
		h.Log.Error().Err(err).Msg("failed to sign widget token")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "widget_unavailable",
			Message: "The widget is not configured",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := widgetPage.Execute(c.Writer, struct{ Token string }{token}); err != nil {
		h.Log.Error().Err(err).Msg("failed to render widget")
	}
}

// TriggerWidget runs one widget conversion for the URL the page was bound to.
// POST /widget/convert
func (h *Handler) TriggerWidget(c *gin.Context) {
	var req widgetRequest
	_ = c.ShouldBind(&req)

	url, err := middleware.ParseWidgetToken(req.Token, h.WidgetSecret)
	if err != nil {
		h.Log.Warn().
			Err(err).
			Str("kind", string(models.KindInvalidInput)).
			Msg("Rejected widget trigger without a valid token")
		c.Status(http.StatusNoContent)
		return
	}

	d := &responseDeliverer{c: c}
	w := converter.NewWidget(h.Converter, source.URL(url), d, h.Log)
	w.Trigger(c.Request.Context())

	if !d.delivered {
		c.Status(http.StatusNoContent)
	}
}
