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
	ingredientListURL = "/ingredients/"
	ingredientLabel   = "Ingredient"
)

// IngredientController handles HTTP requests related to ingredients
type IngredientController interface {
	ListIngredients(ctx *gin.Context)
	GetIngredient(ctx *gin.Context)
	CreateIngredientForm(ctx *gin.Context)
	CreateIngredient(ctx *gin.Context)
	UpdateIngredientForm(ctx *gin.Context)
	UpdateIngredient(ctx *gin.Context)
	DeleteIngredientConfirm(ctx *gin.Context)
	DeleteIngredient(ctx *gin.Context)
}

type ingredientController struct {
	service services.IngredientService
}

// NewIngredientController creates a new instance of IngredientController
func NewIngredientController(service services.IngredientService) IngredientController {
	return &ingredientController{service: service}
}

// ListIngredients godoc
// @Summary List ingredients
// @Description Paginated list of ingredients with search and ordering
// @Tags ingredients
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
// @Router /ingredients/ [get]
func (c *ingredientController) ListIngredients(ctx *gin.Context) {
	result, err := c.service.ListIngredients(listParams(ctx, "name"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"ingredient_list": result.Items,
		"page":            result.Page,
		"search":          gin.H{"name": result.Search},
		"current_order":   result.OrderBy,
		"order_options":   listing.Ingredients.Keys(),
	})
}

// GetIngredient godoc
// @Summary Get ingredient by ID
// @Description Single ingredient
// @Tags ingredients
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ingredient ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /ingredients/{id}/ [get]
func (c *ingredientController) GetIngredient(ctx *gin.Context) {
	ingredient, ok := c.loadIngredient(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"ingredient": ingredient})
}

// CreateIngredientForm godoc
// @Summary Ingredient creation form
// @Description Fields and choices for creating a ingredient
// @Tags ingredients
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Router /ingredients/create/ [get]
func (c *ingredientController) CreateIngredientForm(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"fields": forms.NameFields, "initial": gin.H{}})
}

// CreateIngredient godoc
// @Summary Create a ingredient
// @Description Create a new ingredient
// @Tags ingredients
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param ingredient body forms.NameForm true "Ingredient data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Router /ingredients/create/ [post]
func (c *ingredientController) CreateIngredient(ctx *gin.Context) {
	var form forms.NameForm
	if !bind(ctx, &form) {
		return
	}
	if errs := form.Validate(); errs.Any() {
		respondFieldErrors(ctx, errs)
		return
	}

	created, err := c.service.CreateIngredient(models.Ingredient{Name: form.Name})
	if err != nil {
		respondSaveError(ctx, ingredientLabel, err)
		return
	}
	respondCreated(ctx, "ingredient", created, created.AbsoluteURL())
}

// UpdateIngredientForm godoc
// @Summary Ingredient update form
// @Description Fields and current values of a ingredient
// @Tags ingredients
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ingredient ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /ingredients/{id}/update/ [get]
func (c *ingredientController) UpdateIngredientForm(ctx *gin.Context) {
	ingredient, ok := c.loadIngredient(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"ingredient": ingredient,
		"fields":     forms.NameFields,
		"initial":    gin.H{"name": ingredient.Name},
	})
}

// UpdateIngredient godoc
// @Summary Update a ingredient
// @Description Update an existing ingredient
// @Tags ingredients
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ingredient ID"
// @Param ingredient body forms.NameForm true "Ingredient data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /ingredients/{id}/update/ [post]
func (c *ingredientController) UpdateIngredient(ctx *gin.Context) {
	ingredient, ok := c.loadIngredient(ctx)
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

	ingredient.Name = form.Name
	updated, err := c.service.UpdateIngredient(ingredient)
	if err != nil {
		respondSaveError(ctx, ingredientLabel, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"ingredient": updated, "success_url": updated.AbsoluteURL()})
}

// DeleteIngredientConfirm godoc
// @Summary Confirm ingredient deletion
// @Description The ingredient that would be deleted
// @Tags ingredients
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ingredient ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /ingredients/{id}/delete/ [get]
func (c *ingredientController) DeleteIngredientConfirm(ctx *gin.Context) {
	ingredient, ok := c.loadIngredient(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"ingredient": ingredient, "object": ingredient.String()})
}

// DeleteIngredient godoc
// @Summary Delete a ingredient
// @Description Delete a ingredient
// @Tags ingredients
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ingredient ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /ingredients/{id}/delete/ [post]
func (c *ingredientController) DeleteIngredient(ctx *gin.Context) {
	ingredient, ok := c.loadIngredient(ctx)
	if !ok {
		return
	}
	if err := c.service.DeleteIngredient(ingredient.ID); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"deleted": true, "success_url": ingredientListURL})
}

func (c *ingredientController) loadIngredient(ctx *gin.Context) (models.Ingredient, bool) {
	id, ok := pathID(ctx, models.ErrIngredientNotFound, "Ingredient not found")
	if !ok {
		return models.Ingredient{}, false
	}
	ingredient, err := c.service.GetIngredientByID(id)
	if err != nil {
		respondError(ctx, err)
		return models.Ingredient{}, false
	}
	return ingredient, true
}
