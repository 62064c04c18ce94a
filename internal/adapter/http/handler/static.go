package handler

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed static/index.html
var testFormHTML []byte

// TestForm handles GET / — the static test-card form.
func TestForm(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", testFormHTML)
}
