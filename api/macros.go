package api

import (
	"fmt"
	"net/http"

	"deskcontrol/models"
	"deskcontrol/service"

	"github.com/gin-gonic/gin"
)

// CreateMacroRequest is the body of POST /v1/macros.
type CreateMacroRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Actions     []models.Action `json:"actions"`
}

// ListMacros returns every stored macro.
func ListMacros(c *gin.Context, macros *service.MacroStore) {
	list, err := macros.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(list))
}

// CreateMacro stores a new named action sequence.
func CreateMacro(c *gin.Context, macros *service.MacroStore) {
	var req CreateMacroRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
		return
	}

	macro, err := macros.Create(req.Name, req.Description, req.Actions)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse(macro))
}

// DeleteMacro removes a macro by id.
func DeleteMacro(c *gin.Context, macros *service.MacroStore) {
	if err := macros.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse("macro deleted"))
}

// RunMacro replays a macro's actions sequentially through the action
// queue, stopping at the first failed step. The responses collected so
// far are always returned.
func RunMacro(c *gin.Context, macros *service.MacroStore, queue *service.ActionQueue) {
	macro, err := macros.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
		return
	}
	if macro == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse("macro not found"))
		return
	}

	responses := make([]models.ActionResponse, 0, len(macro.Actions))
	for i, action := range macro.Actions {
		req := models.ActionRequest{
			ID:     fmt.Sprintf("%s-step-%d", macro.ID, i),
			Action: action,
		}
		resp := queue.Execute(req, service.DefaultActionTimeout)
		responses = append(responses, resp)
		if resp.Status == models.StatusError {
			c.JSON(http.StatusInternalServerError, models.APIResponse{
				Success: false,
				Data:    responses,
				Error:   fmt.Sprintf("macro aborted at step %d", i),
			})
			return
		}
	}
	c.JSON(http.StatusOK, models.SuccessResponse(responses))
}
