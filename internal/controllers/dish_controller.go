package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-kitchen/internal/forms"
	"github.com/franciscosanchezn/gin-kitchen/internal/listing"
	"github.com/franciscosanchezn/gin-kitchen/internal/media"
	"github.com/franciscosanchezn/gin-kitchen/internal/models"
	"github.com/franciscosanchezn/gin-kitchen/internal/services"
	"github.com/gin-gonic/gin"
)

const (
	dishListURL = "/dishes/"
	dishLabel   = "Dish"

	msgPictureContradiction = "Please either submit a file or check the clear checkbox, not both."
)

// Choice is one selectable related record of a form
type Choice struct {
	ID    uint   `json:"id"`
	Label string `json:"label"`
}

// DishController handles HTTP requests related to dishes
type DishController interface {
	// ListDishes returns one page of dishes with their dish type
	ListDishes(ctx *gin.Context)
	// GetDish returns a dish with its dish type, cooks and ingredients
	GetDish(ctx *gin.Context)
	// CreateDishForm returns the dish fields and the available choices
	CreateDishForm(ctx *gin.Context)
	// CreateDish creates a dish from a form, multipart or JSON body.
	// The optional picture is read from the "picture" file part.
	CreateDish(ctx *gin.Context)
	UpdateDishForm(ctx *gin.Context)
	UpdateDish(ctx *gin.Context)
	DeleteDishConfirm(ctx *gin.Context)
	DeleteDish(ctx *gin.Context)
}

type dishController struct {
	dishes      services.DishService
	dishTypes   services.DishTypeService
	cooks       services.CookService
	ingredients services.IngredientService
}

// NewDishController creates a new instance of DishController
func NewDishController(dishes services.DishService, dishTypes services.DishTypeService,
	cooks services.CookService, ingredients services.IngredientService) DishController {
	return &dishController{dishes: dishes, dishTypes: dishTypes, cooks: cooks, ingredients: ingredients}
}

// ListDishes godoc
// @Summary List dishes
// @Description Paginated list of dishes with search and ordering
// @Tags dishes
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
// @Router /dishes/ [get]
func (c *dishController) ListDishes(ctx *gin.Context) {
	result, err := c.dishes.ListDishes(listParams(ctx, "name"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"dish_list":     result.Items,
		"page":          result.Page,
		"search":        gin.H{"name": result.Search},
		"current_order": result.OrderBy,
		"order_options": listing.Dishes.Keys(),
	})
}

// GetDish godoc
// @Summary Get dish by ID
// @Description Dish with its dish type, cooks and ingredients
// @Tags dishes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Dish ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /dishes/{id}/ [get]
func (c *dishController) GetDish(ctx *gin.Context) {
	dish, ok := c.loadDish(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"dish": dish})
}

// CreateDishForm godoc
// @Summary Dish creation form
// @Description Fields and choices for creating a dish
// @Tags dishes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Router /dishes/create/ [get]
func (c *dishController) CreateDishForm(ctx *gin.Context) {
	choices, err := c.choices()
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"fields":  forms.DishFields,
		"initial": gin.H{},
		"choices": choices,
	})
}

// CreateDish godoc
// @Summary Create a dish
// @Description Create a new dish; only staff may do this
// @Tags dishes
// @Accept mpfd,x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param name formData string true "Dish name"
// @Param description formData string false "Description"
// @Param price formData string true "Price with two decimals"
// @Param dish_type formData int true "Dish type ID"
// @Param cooks formData []int false "Cook IDs"
// @Param ingredients formData []int false "Ingredient IDs"
// @Param picture formData file false "Picture, stored as JPEG inside 800x800"
// @Param picture-clear formData boolean false "Remove the current picture"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Router /dishes/create/ [post]
func (c *dishController) CreateDish(ctx *gin.Context) {
	form, change, ok := bindDish(ctx)
	if !ok {
		return
	}
	defer change.close()

	created, err := c.dishes.CreateDish(form.Dish(), change.PictureChange)
	if err != nil {
		respondSaveError(ctx, dishLabel, err)
		return
	}
	respondCreated(ctx, "dish", created, created.AbsoluteURL())
}

// UpdateDishForm godoc
// @Summary Dish update form
// @Description Fields and current values of a dish
// @Tags dishes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Dish ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /dishes/{id}/update/ [get]
func (c *dishController) UpdateDishForm(ctx *gin.Context) {
	dish, ok := c.loadDish(ctx)
	if !ok {
		return
	}
	choices, err := c.choices()
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"dish":    dish,
		"fields":  forms.DishFields,
		"initial": forms.DishInitial(dish),
		"choices": choices,
	})
}

// UpdateDish godoc
// @Summary Update a dish
// @Description Update an existing dish
// @Tags dishes
// @Accept mpfd,x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param id path int true "Dish ID"
// @Param name formData string true "Dish name"
// @Param description formData string false "Description"
// @Param price formData string true "Price with two decimals"
// @Param dish_type formData int true "Dish type ID"
// @Param cooks formData []int false "Cook IDs"
// @Param ingredients formData []int false "Ingredient IDs"
// @Param picture formData file false "Picture, stored as JPEG inside 800x800"
// @Param picture-clear formData boolean false "Remove the current picture"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /dishes/{id}/update/ [post]
func (c *dishController) UpdateDish(ctx *gin.Context) {
	id, ok := pathID(ctx, models.ErrDishNotFound, "Dish not found")
	if !ok {
		return
	}
	form, change, ok := bindDish(ctx)
	if !ok {
		return
	}
	defer change.close()

	dish := form.Dish()
	dish.ID = id
	updated, err := c.dishes.UpdateDish(dish, change.PictureChange)
	if err != nil {
		respondSaveError(ctx, dishLabel, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"dish": updated, "success_url": updated.AbsoluteURL()})
}

// DeleteDishConfirm godoc
// @Summary Confirm dish deletion
// @Description The dish that would be deleted
// @Tags dishes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Dish ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /dishes/{id}/delete/ [get]
func (c *dishController) DeleteDishConfirm(ctx *gin.Context) {
	dish, ok := c.loadDish(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"dish": dish, "object": dish.String()})
}

// DeleteDish godoc
// @Summary Delete a dish
// @Description Delete a dish
// @Tags dishes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Dish ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /dishes/{id}/delete/ [post]
func (c *dishController) DeleteDish(ctx *gin.Context) {
	id, ok := pathID(ctx, models.ErrDishNotFound, "Dish not found")
	if !ok {
		return
	}
	if err := c.dishes.DeleteDish(id); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"deleted": true, "success_url": dishListURL})
}

func (c *dishController) loadDish(ctx *gin.Context) (models.Dish, bool) {
	id, ok := pathID(ctx, models.ErrDishNotFound, "Dish not found")
	if !ok {
		return models.Dish{}, false
	}
	dish, err := c.dishes.GetDishByID(id)
	if err != nil {
		respondError(ctx, err)
		return models.Dish{}, false
	}
	return dish, true
}

// choices lists the dish types, cooks and ingredients a dish may reference
func (c *dishController) choices() (gin.H, error) {
	dishTypes, err := c.dishTypes.AllDishTypes()
	if err != nil {
		return nil, err
	}
	cooks, err := c.cooks.AllCooks()
	if err != nil {
		return nil, err
	}
	ingredients, err := c.ingredients.AllIngredients()
	if err != nil {
		return nil, err
	}

	dishTypeChoices := make([]Choice, 0, len(dishTypes))
	for _, dishType := range dishTypes {
		dishTypeChoices = append(dishTypeChoices, Choice{ID: dishType.ID, Label: dishType.String()})
	}
	cookChoices := make([]Choice, 0, len(cooks))
	for _, cook := range cooks {
		cookChoices = append(cookChoices, Choice{ID: cook.ID, Label: cook.String()})
	}
	ingredientChoices := make([]Choice, 0, len(ingredients))
	for _, ingredient := range ingredients {
		ingredientChoices = append(ingredientChoices, Choice{ID: ingredient.ID, Label: ingredient.String()})
	}
	return gin.H{
		"dish_type":   dishTypeChoices,
		"cooks":       cookChoices,
		"ingredients": ingredientChoices,
	}, nil
}

// pictureUpload is the picture change of a request along with the open
// uploaded file
type pictureUpload struct {
	services.PictureChange
	file interface{ Close() error }
}

func (p pictureUpload) close() {
	if p.file != nil {
		_ = p.file.Close()
	}
}

// bindDish binds and validates the dish form and opens the uploaded picture
func bindDish(ctx *gin.Context) (forms.DishForm, pictureUpload, bool) {
	var form forms.DishForm
	if !bind(ctx, &form) {
		return form, pictureUpload{}, false
	}
	errs := form.Validate()

	var upload pictureUpload
	upload.Clear = form.ClearPicture
	if header, err := ctx.FormFile("picture"); err == nil {
		if form.ClearPicture {
			errs.Add("picture", msgPictureContradiction)
		} else if file, err := header.Open(); err != nil {
			errs.Add("picture", "The submitted file is empty.")
		} else {
			upload.file = file
			upload.Upload = &media.Upload{Name: header.Filename, Content: file}
		}
	}

	if errs.Any() {
		upload.close()
		respondFieldErrors(ctx, errs)
		return form, pictureUpload{}, false
	}
	return form, upload, true
}
