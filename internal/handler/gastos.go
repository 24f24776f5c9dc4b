package handler

import (
	"net/http"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/dto"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/service"

	"github.com/gin-gonic/gin"
)

type GastosHandler struct{ svc service.GastoService }

func NewGastosHandler(svc service.GastoService) *GastosHandler { return &GastosHandler{svc: svc} }

// Registrar godoc
// @Summary Registra un gasto operativo pagado desde la caja
// @Tags gastos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegistrarGastoRequest true "Datos del gasto"
// @Success 201 {object} dto.GastoResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/gastos [post]
func (h *GastosHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarGastoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorFromClaims(c)
	if !ok {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *GastosHandler) Obtener(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarPorSesion returns every expense charged against a session.
func (h *GastosHandler) ListarPorSesion(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListarPorSesion(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
