// Package controllers holds the gin handlers of the kitchen service. Every
// handler answers with JSON carrying the object, list, form or errors the
// operation produced.
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/gin-kitchen/internal/forms"
	"github.com/franciscosanchezn/gin-kitchen/internal/listing"
	"github.com/franciscosanchezn/gin-kitchen/internal/middleware"
	"github.com/franciscosanchezn/gin-kitchen/internal/models"
	"github.com/franciscosanchezn/gin-kitchen/internal/permissions"
	"github.com/franciscosanchezn/gin-kitchen/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel aligns the package logger with the application level
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

const msgUnknownError = "Something went wrong. Please try again."

// pathID reads the :id parameter. Anything but a positive integer is a 404.
func pathID(ctx *gin.Context, code, message string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusNotFound, models.NewAPIError(code, message))
		return 0, false
	}
	return uint(id), true
}

// listParams collects the search, order and page parameters of a list
// request. searchParam is the entity specific search parameter.
func listParams(ctx *gin.Context, searchParam string) listing.Params {
	search := forms.NewSearchForm(ctx.Query, searchParam)
	return listing.Params{
		Search:  search.Term(),
		OrderBy: ctx.Query("order_by"),
		Page:    ctx.Query("page"),
	}
}

// bind decodes the form, multipart or JSON body into form. A body that
// cannot be decoded is answered with a non-field error.
func bind(ctx *gin.Context, form interface{}) bool {
	if err := ctx.ShouldBind(form); err != nil {
		log.WithError(err).WithField("path", ctx.Request.URL.Path).Debug("Failed to bind form")
		errs := forms.FieldErrors{}
		errs.Add(forms.NonFieldErrors, "The submitted data could not be read: "+err.Error())
		respondFieldErrors(ctx, errs)
		return false
	}
	return true
}

func respondFieldErrors(ctx *gin.Context, errs forms.FieldErrors) {
	ctx.JSON(http.StatusBadRequest, gin.H{"errors": errs})
}

// respondCreated reports a created object and where to find it
func respondCreated(ctx *gin.Context, key string, object interface{}, url string) {
	ctx.Header("Location", url)
	ctx.JSON(http.StatusCreated, gin.H{key: object, "success_url": url})
}

// allow runs the permission check of an operation on target and answers
// 401 or 403 when it fails
func allow(ctx *gin.Context, target *models.Cook, action permissions.Action) bool {
	if err := permissions.Check(middleware.CurrentCook(ctx), target, action); err != nil {
		middleware.RespondPermissionError(ctx, err)
		return false
	}
	return true
}

// respondError maps a service error to its HTTP answer
func respondError(ctx *gin.Context, err error) {
	var choiceErr *services.UnknownChoiceError
	switch {
	case errors.Is(err, services.ErrCookNotFound):
		ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrCookNotFound, "Cook not found"))
	case errors.Is(err, services.ErrDishNotFound):
		ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrDishNotFound, "Dish not found"))
	case errors.Is(err, services.ErrDishTypeNotFound):
		ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrDishTypeNotFound, "Dish type not found"))
	case errors.Is(err, services.ErrIngredientNotFound):
		ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrIngredientNotFound, "Ingredient not found"))
	case errors.Is(err, listing.ErrPageNotFound):
		ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrPageNotFound, "Invalid page."))
	case errors.Is(err, services.ErrSentinelProtected):
		ctx.JSON(http.StatusConflict, models.NewAPIError(models.ErrSentinelProtected,
			"The \""+models.SentinelDishTypeName+"\" dish type cannot be deleted."))
	case errors.Is(err, services.ErrUsernameTaken):
		respondFieldError(ctx, "username", "A user with that username already exists.")
	case errors.Is(err, services.ErrNameTaken):
		respondFieldError(ctx, "name", "An object with this Name already exists.")
	case errors.Is(err, services.ErrUnknownDishType):
		respondFieldError(ctx, "dish_type", "Select a valid choice. That choice is not one of the available choices.")
	case errors.As(err, &choiceErr):
		respondFieldError(ctx, choiceErr.Field, forms.InvalidChoice(choiceErr.ID))
	case errors.Is(err, services.ErrInvalidPicture):
		respondFieldError(ctx, "picture",
			"Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	case errors.Is(err, permissions.ErrUnauthenticated), errors.Is(err, permissions.ErrForbidden):
		middleware.RespondPermissionError(ctx, err)
	default:
		log.WithError(err).WithField("path", ctx.Request.URL.Path).Error("Request failed")
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, msgUnknownError))
	}
}

func respondFieldError(ctx *gin.Context, field, message string) {
	errs := forms.FieldErrors{}
	errs.Add(field, message)
	respondFieldErrors(ctx, errs)
}

// respondSaveError is respondError with the duplicate name message of the
// entity named label
func respondSaveError(ctx *gin.Context, label string, err error) {
	if errors.Is(err, services.ErrNameTaken) {
		respondFieldError(ctx, "name", label+" with this Name already exists.")
		return
	}
	respondError(ctx, err)
}
