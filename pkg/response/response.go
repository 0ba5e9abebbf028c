package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/shkola-app/gradebook-api/pkg/errors"
)

// JSON sends a success payload as-is. Handlers shape the body themselves
// because the wire contract predates this service and clients depend on
// top-level fields like "success" and "teachers".
func JSON(c *gin.Context, status int, payload interface{}) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, payload)
}

// OK sends a 200 response.
func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}

// Error normalises the error and sends `{"error": <message>}` with the
// mapped status code. Internal failures carry the underlying cause so the
// client sees the full failure description.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	message := appErr.Message
	if appErr.Status >= http.StatusInternalServerError {
		message = appErr.Error()
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(appErr.Status, gin.H{"error": message})
}

// Blob sends raw bytes with a download disposition, used by the exports.
func Blob(c *gin.Context, contentType, filename string, data []byte) {
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}
