package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-kitchen/internal/forms"
	"github.com/franciscosanchezn/gin-kitchen/internal/listing"
	"github.com/franciscosanchezn/gin-kitchen/internal/models"
	"github.com/franciscosanchezn/gin-kitchen/internal/services"
	"github.com/gin-gonic/gin"
)

const (
	dishTypeListURL = "/dish_types/"
	dishTypeLabel   = "Dish type"
)

// DishTypeController handles HTTP requests related to dish types
type DishTypeController interface {
	ListDishTypes(ctx *gin.Context)
	GetDishType(ctx *gin.Context)
	CreateDishTypeForm(ctx *gin.Context)
	CreateDishType(ctx *gin.Context)
	UpdateDishTypeForm(ctx *gin.Context)
	UpdateDishType(ctx *gin.Context)
	DeleteDishTypeConfirm(ctx *gin.Context)
	// DeleteDishType removes a dish type, moving its dishes to the "None" type
	DeleteDishType(ctx *gin.Context)
}

type dishTypeController struct {
	service services.DishTypeService
}

// NewDishTypeController creates a new instance of DishTypeController
func NewDishTypeController(service services.DishTypeService) DishTypeController {
	return &dishTypeController{service: service}
}

// ListDishTypes godoc
// @Summary List dish types
// @Description Paginated list of dish types with search and ordering
// @Tags dish_types
// @Produce json
// @Security BearerAuth
// @Param name query string false "Case-insensitive search on the name"
// @Param title query string false "Search term used when name is empty"
// @Param order_by query string false "Comma-separated order keys, e.g. name_desc"
// @Param page query string false "Page number, or last for the final page"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /dish_types/ [get]
func (c *dishTypeController) ListDishTypes(ctx *gin.Context) {
	result, err := c.service.ListDishTypes(listParams(ctx, "name"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"dish_type_list": result.Items,
		"page":           result.Page,
		"search":         gin.H{"name": result.Search},
		"current_order":  result.OrderBy,
		"order_options":  listing.DishTypes.Keys(),
	})
}

// GetDishType godoc
// @Summary Get dish type by ID
// @Description Single dish type
// @Tags dish_types
// @Produce json
// @Security BearerAuth
// @Param id path int true "Dish type ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /dish_types/{id}/ [get]
func (c *dishTypeController) GetDishType(ctx *gin.Context) {
	dishType, ok := c.loadDishType(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"dish_type": dishType})
}

// CreateDishTypeForm godoc
// @Summary Dish type creation form
// @Description Fields and choices for creating a dish type
// @Tags dish_types
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Router /dish_types/create/ [get]
func (c *dishTypeController) CreateDishTypeForm(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"fields": forms.NameFields, "initial": gin.H{}})
}

// CreateDishType godoc
// @Summary Create a dish type
// @Description Create a new dish type; only staff may do this
// @Tags dish_types
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param dishType body forms.NameForm true "Dish type data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Router /dish_types/create/ [post]
func (c *dishTypeController) CreateDishType(ctx *gin.Context) {
	var form forms.NameForm
	if !bind(ctx, &form) {
		return
	}
	if errs := form.Validate(); errs.Any() {
		respondFieldErrors(ctx, errs)
		return
	}

	created, err := c.service.CreateDishType(models.DishType{Name: form.Name})
	if err != nil {
		respondSaveError(ctx, dishTypeLabel, err)
		return
	}
	respondCreated(ctx, "dish_type", created, created.AbsoluteURL())
}

// UpdateDishTypeForm godoc
// @Summary Dish type update form
// @Description Fields and current values of a dish type
// @Tags dish_types
// @Produce json
// @Security BearerAuth
// @Param id path int true "Dish type ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /dish_types/{id}/update/ [get]
func (c *dishTypeController) UpdateDishTypeForm(ctx *gin.Context) {
	dishType, ok := c.loadDishType(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"dish_type": dishType,
		"fields":    forms.NameFields,
		"initial":   gin.H{"name": dishType.Name},
	})
}

// UpdateDishType godoc
// @Summary Update a dish type
// @Description Update an existing dish type
// @Tags dish_types
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param id path int true "Dish type ID"
// @Param dishType body forms.NameForm true "Dish type data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /dish_types/{id}/update/ [post]
func (c *dishTypeController) UpdateDishType(ctx *gin.Context) {
	dishType, ok := c.loadDishType(ctx)
	if !ok {
		return
	}
	var form forms.NameForm
	if !bind(ctx, &form) {
		return
	}
	if errs := form.Validate(); errs.Any() {
		respondFieldErrors(ctx, errs)
		return
	}

	dishType.Name = form.Name
	updated, err := c.service.UpdateDishType(dishType)
	if err != nil {
		respondSaveError(ctx, dishTypeLabel, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"dish_type": updated, "success_url": updated.AbsoluteURL()})
}

// DeleteDishTypeConfirm godoc
// @Summary Confirm dish type deletion
// @Description The dish type that would be deleted
// @Tags dish_types
// @Produce json
// @Security BearerAuth
// @Param id path int true "Dish type ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /dish_types/{id}/delete/ [get]
func (c *dishTypeController) DeleteDishTypeConfirm(ctx *gin.Context) {
	dishType, ok := c.loadDishType(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"dish_type": dishType, "object": dishType.String()})
}

// DeleteDishType godoc
// @Summary Delete a dish type
// @Description Delete a dish type; its dishes move to the "None" dish type
// @Tags dish_types
// @Produce json
// @Security BearerAuth
// @Param id path int true "Dish type ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Router /dish_types/{id}/delete/ [post]
func (c *dishTypeController) DeleteDishType(ctx *gin.Context) {
	dishType, ok := c.loadDishType(ctx)
	if !ok {
		return
	}
	if err := c.service.DeleteDishType(dishType.ID); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"deleted": true, "success_url": dishTypeListURL})
}

func (c *dishTypeController) loadDishType(ctx *gin.Context) (models.DishType, bool) {
	id, ok := pathID(ctx, models.ErrDishTypeNotFound, "Dish type not found")
	if !ok {
		return models.DishType{}, false
	}
	dishType, err := c.service.GetDishTypeByID(id)
	if err != nil {
		respondError(ctx, err)
		return models.DishType{}, false
	}
	return dishType, true
}
