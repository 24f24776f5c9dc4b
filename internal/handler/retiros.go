package handler

import (
	"net/http"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/dto"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/service"

	"github.com/gin-gonic/gin"
)

type RetirosHandler struct{ svc service.RetiroService }

func NewRetirosHandler(svc service.RetiroService) *RetirosHandler {
	return &RetirosHandler{svc: svc}
}

// Solicitar godoc
// @Summary Solicita un retiro de efectivo de la caja
// @Tags retiros
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.SolicitarRetiroRequest true "Solicitud de retiro"
// @Success 201 {object} dto.RetiroResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/retiros [post]
func (h *RetirosHandler) Solicitar(c *gin.Context) {
	var req dto.SolicitarRetiroRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorFromClaims(c)
	if !ok {
		return
	}
	resp, err := h.svc.Solicitar(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Resolver authorizes or rejects a pending withdrawal; supervisor only,
// and never the requester themselves.
func (h *RetirosHandler) Resolver(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ResolverRetiroRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorFromClaims(c)
	if !ok {
		return
	}
	resp, err := h.svc.Resolver(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Completar records the physical hand-off of an authorized withdrawal.
func (h *RetirosHandler) Completar(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CompletarRetiroRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorFromClaims(c)
	if !ok {
		return
	}
	resp, err := h.svc.Completar(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancelar aborts a withdrawal that has not been completed yet.
func (h *RetirosHandler) Cancelar(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	actor, ok := actorFromClaims(c)
	if !ok {
		return
	}
	resp, err := h.svc.Cancelar(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RetirosHandler) Obtener(c *gin.Context) {
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

// ListarPorSesion returns every withdrawal of a session.
func (h *RetirosHandler) ListarPorSesion(c *gin.Context) {
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
