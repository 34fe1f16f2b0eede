package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		write  func(c *gin.Context)
		status int
		body   string
	}{
		{"success", func(c *gin.Context) { Success(c, gin.H{"n": 1}) }, http.StatusOK, `{"code":0,"message":"success","data":{"n":1}}`},
		{"created", func(c *gin.Context) { Created(c, []int{1}) }, http.StatusCreated, `{"code":0,"message":"created","data":[1]}`},
		{"not found", func(c *gin.Context) { NotFound(c, "card not found") }, http.StatusNotFound, `{"code":-1003,"message":"card not found"}`},
		{"conflict", func(c *gin.Context) { Conflict(c, "taken") }, http.StatusConflict, `{"code":-1004,"message":"taken"}`},
		{"upstream", func(c *gin.Context) { UpstreamError(c, "down") }, http.StatusBadGateway, `{"code":-1005,"message":"down"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.write(c)
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}
