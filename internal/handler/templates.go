package handler

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vocab-trainer/internal/middleware"
	"github.com/vocab-trainer/pkg/response"
)

//go:embed templates/*.html
var templateFS embed.FS

// ImageURLPrefix is where locally stored card images are served
const ImageURLPrefix = "/static/"

var templateFuncs = template.FuncMap{
	"inc":      func(i int) int { return i + 1 },
	"imageURL": imageURL,
}

// LoadTemplates parses the embedded page templates
func LoadTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}

// imageURL maps a stored image reference to a browser URL. Remote references
// are already absolute.
func imageURL(ref *string) string {
	if ref == nil {
		return ""
	}
	if strings.HasPrefix(*ref, "http://") || strings.HasPrefix(*ref, "https://") {
		return *ref
	}
	return ImageURLPrefix + strings.TrimPrefix(*ref, "/")
}

// render adds the session user and pending flash message to data and renders the page
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Username"] = middleware.GetUsername(c)
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = takeFlash(c)
	}
	c.HTML(status, name, data)
}

// renderError answers with the error page, or a JSON error for API clients
func renderError(c *gin.Context, status int, message string) {
	if middleware.WantsJSON(c) {
		response.Error(c, status, response.CodeInternal, message)
		return
	}
	render(c, status, "error.html", gin.H{
		"Title":   http.StatusText(status),
		"Message": message,
	})
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
