package api

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strings"

	"deskcontrol/driver"
	"deskcontrol/models"
	"deskcontrol/service"

	"github.com/gin-gonic/gin"
)

// CreateSessionRequest is the body of POST /v1/session.
type CreateSessionRequest struct {
	ClearExisting bool `json:"clear_existing"`
}

// CreateSession mints the single session, or reports a conflict when one
// is already alive and the caller did not ask to replace it.
func CreateSession(c *gin.Context, sessions *service.SessionManager) {
	var req CreateSessionRequest
	// An empty body means clear_existing=false.
	_ = c.ShouldBindJSON(&req)

	session, err := sessions.CreateSession(req.ClearExisting)
	if err != nil {
		c.JSON(http.StatusConflict, models.ErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": session.ID})
}

// EndSession clears the stored session. The caller must hold it.
func EndSession(c *gin.Context, sessions *service.SessionManager) {
	sessions.Clear()
	c.JSON(http.StatusOK, models.MessageResponse("session ended"))
}

// ExecuteAction submits one action through the queue and maps the
// response status onto an HTTP status code.
func ExecuteAction(c *gin.Context, queue *service.ActionQueue) {
	var req models.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
		return
	}

	resp := queue.Execute(req, service.DefaultActionTimeout)
	c.JSON(statusCodeFor(resp), resp)
}

func statusCodeFor(resp models.ActionResponse) int {
	if resp.Status == models.StatusSuccess {
		return http.StatusOK
	}
	if resp.Error == nil {
		return http.StatusInternalServerError
	}
	switch resp.Error.Kind {
	case models.ErrorInvalidInput:
		return http.StatusUnprocessableEntity
	case models.ErrorTimeout:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// SystemInfo reports the host OS and primary display geometry.
func SystemInfo(c *gin.Context, capture driver.ScreenCapture) {
	width, height, err := capture.DisplaySize()
	if err != nil {
		c.JSON(http.StatusInternalServerError,
			models.ErrorResponse(fmt.Sprintf("Failed to get display info: %v", err)))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"os_type":        runtime.GOOS,
		"os_version":     osVersion(),
		"display_width":  width,
		"display_height": height,
	})
}

// osVersion reads PRETTY_NAME from /etc/os-release, falling back to the
// GOOS/GOARCH pair.
func osVersion() string {
	f, err := os.Open("/etc/os-release")
	if err != nil {
		return runtime.GOOS + "/" + runtime.GOARCH
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "PRETTY_NAME=") {
			return strings.Trim(strings.TrimPrefix(line, "PRETTY_NAME="), `"`)
		}
	}
	return runtime.GOOS + "/" + runtime.GOARCH
}
