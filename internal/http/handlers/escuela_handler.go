package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListEscuelas godoc
// @ID          listEscuelas
// @Summary     List schools
// @Description Returns the cached schools catalog used by the registration form.
// @Tags        Escuelas
// @Produce     json
//
// @Success     200  {array}  domain.Escuela
// @Failure     502  {object} handlers.ErrorResponse "Upstream failed"
// @Router      /escuelas [get]
func (h *Handlers) ListEscuelas(c *gin.Context) {
	items, err := h.regSvc.Escuelas(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}
