package handler

import (
	"net/http"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// bindAndValidate binds the JSON body and runs struct validation, writing
// the error response itself. Returns false when the request was rejected.
func bindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Corpo da requisição inválido: "+err.Error()))
		return false
	}
	if err := validate.Struct(obj); err != nil {
		c.JSON(http.StatusUnprocessableEntity, validationResponse(err))
		return false
	}
	return true
}

// bindQueryAndValidate does the same for query-string filters.
func bindQueryAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parâmetros de consulta inválidos: "+err.Error()))
		return false
	}
	if err := validate.Struct(obj); err != nil {
		c.JSON(http.StatusUnprocessableEntity, validationResponse(err))
		return false
	}
	return true
}

func validationResponse(err error) *apierror.ValidationError {
	fields := map[string]string{}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
	}
	return apierror.NewValidation(fields)
}

// parseUUIDParam reads a :param as UUID, answering 400 on failure.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Identificador inválido"))
		return uuid.Nil, false
	}
	return id, true
}
