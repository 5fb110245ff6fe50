package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetDashboard godoc
// @ID          getDashboard
// @Summary     Control board summary
// @Description Aggregates the cached registrations per school and per belt rank. The weak ETag changes whenever the list is reloaded.
// @Tags        Dashboard
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
//
// @Success     200  {object} dashboard.Summary
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     502  {object} handlers.ErrorResponse "Upstream failed"
// @Router      /dashboard [get]
func (h *Handlers) GetDashboard(c *gin.Context) {
	sum, loaded, err := h.dashSvc.Summary(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	etag := fmt.Sprintf(`W/"dashboard:%d:%d"`, sum.TotalCount, loaded.UnixNano())
	if notModified(c, etag) {
		return
	}
	ok(c, http.StatusOK, sum)
}
