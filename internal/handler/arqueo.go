package handler

import (
	"net/http"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/dto"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/service"

	"github.com/gin-gonic/gin"
)

type ArqueoHandler struct{ svc service.ArqueoService }

func NewArqueoHandler(svc service.ArqueoService) *ArqueoHandler { return &ArqueoHandler{svc: svc} }

// Ejecutar godoc
// @Summary Realiza el arqueo ciego y, dentro de tolerancia, cierra la sesion
// @Tags arqueo
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CerrarCajaRequest true "Declaracion de arqueo"
// @Success 200 {object} dto.ArqueoResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/arqueo [post]
func (h *ArqueoHandler) Ejecutar(c *gin.Context) {
	var req dto.CerrarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorFromClaims(c)
	if !ok {
		return
	}
	resp, err := h.svc.Ejecutar(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Aprobar signs off an out-of-tolerance arqueo; supervisor only.
func (h *ArqueoHandler) Aprobar(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AprobarArqueoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorFromClaims(c)
	if !ok {
		return
	}
	resp, err := h.svc.Aprobar(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ArqueoHandler) Obtener(c *gin.Context) {
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

// ObtenerPorSesion returns the arqueo attached to a session, if any.
func (h *ArqueoHandler) ObtenerPorSesion(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorSesion(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
