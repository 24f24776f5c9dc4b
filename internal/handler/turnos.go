package handler

import (
	"net/http"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/dto"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/service"

	"github.com/gin-gonic/gin"
)

type TurnosHandler struct{ svc service.TurnoService }

func NewTurnosHandler(svc service.TurnoService) *TurnosHandler { return &TurnosHandler{svc: svc} }

// Iniciar godoc
// @Summary Inicia un turno de cajero sobre una sesion abierta
// @Tags turnos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.IniciarTurnoRequest true "Datos del relevo"
// @Success 201 {object} dto.TurnoResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/turnos [post]
func (h *TurnosHandler) Iniciar(c *gin.Context) {
	var req dto.IniciarTurnoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorFromClaims(c)
	if !ok {
		return
	}
	resp, err := h.svc.Iniciar(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Suspender pauses an active shift; supervisor only.
func (h *TurnosHandler) Suspender(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.SuspenderTurnoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorFromClaims(c)
	if !ok {
		return
	}
	resp, err := h.svc.Suspender(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reanudar resumes a suspended shift; supervisor only.
func (h *TurnosHandler) Reanudar(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ReanudarTurnoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorFromClaims(c)
	if !ok {
		return
	}
	resp, err := h.svc.Reanudar(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cerrar godoc
// @Summary Cierra un turno declarando el efectivo contado
// @Tags turnos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de turno"
// @Param body body dto.CerrarTurnoRequest true "Cierre de turno"
// @Success 200 {object} dto.TurnoResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/turnos/{id}/cerrar [post]
func (h *TurnosHandler) Cerrar(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CerrarTurnoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorFromClaims(c)
	if !ok {
		return
	}
	resp, err := h.svc.Cerrar(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TurnosHandler) Obtener(c *gin.Context) {
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

// ListarPorSesion returns every shift of a session, oldest first.
func (h *TurnosHandler) ListarPorSesion(c *gin.Context) {
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
