package handler

import (
	"net/http"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/service"

	"github.com/gin-gonic/gin"
)

type AuditoriaHandler struct{ svc service.AuditoriaService }

func NewAuditoriaHandler(svc service.AuditoriaService) *AuditoriaHandler {
	return &AuditoriaHandler{svc: svc}
}

// Auditar godoc
// @Summary Cruza el ledger de una sesion contra sus registros de respaldo
// @Tags auditoria
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de sesion"
// @Success 200 {object} dto.AuditoriaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caja/{id}/auditoria [get]
func (h *AuditoriaHandler) Auditar(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Auditar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
