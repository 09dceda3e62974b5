package handler

import (
	"net/http"
	"reflect"

	"restopos/internal/apierror"
	"restopos/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
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
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid JSON: " + err.Error()})
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		fail(c, apierror.Validation(fields))
		return false
	}
	return true
}

// ok writes the standard success envelope.
func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// fail maps a service error onto the standard error envelope. Internal errors
// are logged with request context and surfaced as a generic message only.
func fail(c *gin.Context, err error) {
	apiErr := apierror.From(err)
	if apiErr.Kind == apierror.KindInternal {
		log.Error().
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Err(err).
			Msg("internal error")
	}

	body := gin.H{"success": false, "message": apiErr.Message}
	if len(apiErr.Fields) > 0 {
		body["errors"] = apiErr.Fields
	}
	c.JSON(apiErr.Status(), body)
}

// actorID extracts the authenticated user's id from the JWT claims.
func actorID(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// pathUUID parses a :param path segment as a UUID, failing the request when
// malformed.
func pathUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		fail(c, apierror.Validation(map[string]string{param: "must be a valid uuid"}))
		return uuid.Nil, false
	}
	return id, true
}
