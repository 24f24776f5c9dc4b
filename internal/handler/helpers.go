package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/DanielPOG/AgroShpV1-sub003/internal/apierror"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/domainerr"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/middleware"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/model"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// actorFromClaims builds the service-layer Actor from the JWT claims.
func actorFromClaims(c *gin.Context) (service.Actor, bool) {
	claims := middleware.GetClaims(c)
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token mal formado"))
		return service.Actor{}, false
	}
	return service.Actor{ID: id, Rol: model.Rol(claims.Rol)}, true
}

// pathUUID parses the :id-style path parameter, responding 400 on failure.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return uuid.UUID{}, false
	}
	return id, true
}

// respondError maps business errors onto HTTP statuses and attaches the
// stable error code so clients can branch without parsing messages.
func respondError(c *gin.Context, err error) {
	var derr *domainerr.Error
	if !errors.As(err, &derr) {
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
		_ = c.Error(err)
		return
	}

	var status int
	switch derr.Kind {
	case domainerr.KindValidation:
		status = http.StatusUnprocessableEntity
	case domainerr.KindConflict:
		status = http.StatusConflict
	case domainerr.KindForbidden:
		status = http.StatusForbidden
	case domainerr.KindNotFound:
		status = http.StatusNotFound
	default:
		status = http.StatusBadRequest
	}
	c.JSON(status, apierror.NewWithCode(derr.Code, derr.Detail))
}
