// Package routes wires the controllers into the gin route table.
package routes

import (
	_ "github.com/franciscosanchezn/gin-kitchen/docs" // registers the API docs
	"github.com/franciscosanchezn/gin-kitchen/internal/auth"
	"github.com/franciscosanchezn/gin-kitchen/internal/controllers"
	"github.com/franciscosanchezn/gin-kitchen/internal/middleware"
	"github.com/franciscosanchezn/gin-kitchen/internal/permissions"
	"github.com/franciscosanchezn/gin-kitchen/internal/services"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies are the services and settings the routes are built from
type Dependencies struct {
	Sessions    *auth.Manager
	Cooks       services.CookService
	DishTypes   services.DishTypeService
	Ingredients services.IngredientService
	Dishes      services.DishService
	Index       services.IndexService

	// MediaRoot is served under MediaURL when set
	MediaRoot string
	MediaURL  string

	SecureCookie       bool
	LoginRatePerMinute int
}

// NewRouter creates the gin engine with the middleware chain and every route
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.SessionAuth(deps.Sessions, deps.Cooks),
	)
	Setup(router, deps)
	return router
}

// Setup registers the routes on router
func Setup(router *gin.Engine, deps Dependencies) {
	router.GET("/health", controllers.Health)
	router.GET("/metrics", middleware.MetricsHandler())
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if deps.MediaRoot != "" && deps.MediaURL != "" {
		router.Static(deps.MediaURL, deps.MediaRoot)
	}

	authController := controllers.NewAuthController(deps.Cooks, deps.Sessions, deps.SecureCookie)
	accounts := router.Group("/accounts")
	{
		accounts.GET("/login/", authController.LoginForm)
		accounts.POST("/login/", middleware.RateLimit(middleware.PerMinute(deps.LoginRatePerMinute)), authController.Login)
		accounts.POST("/logout/", authController.Logout)
	}

	// Everything below requires a signed in cook
	protected := router.Group("/", middleware.RequireLogin())

	indexController := controllers.NewIndexController(deps.Index)
	protected.GET("/", indexController.Index)

	cookController := controllers.NewCookController(deps.Cooks, deps.Dishes, deps.Sessions)
	cooks := protected.Group("/cooks")
	{
		cooks.GET("/", middleware.Authorize(permissions.CookList), cookController.ListCooks)
		cooks.GET("/create/", middleware.Authorize(permissions.CookCreate), cookController.CreateCookForm)
		cooks.POST("/create/", middleware.Authorize(permissions.CookCreate), cookController.CreateCook)
		cooks.GET("/:id/", middleware.Authorize(permissions.CookView), cookController.GetCook)
		cooks.GET("/:id/update/", cookController.UpdateCookForm)
		cooks.POST("/:id/update/", cookController.UpdateCook)
		cooks.GET("/:id/delete/", middleware.Authorize(permissions.CookDelete), cookController.DeleteCookConfirm)
		cooks.POST("/:id/delete/", middleware.Authorize(permissions.CookDelete), cookController.DeleteCook)
		cooks.GET("/:id/password-change/", cookController.PasswordChangeForm)
		cooks.POST("/:id/password-change/", cookController.PasswordChange)
		cooks.GET("/:id/password-change/done/", cookController.PasswordChangeDone)
	}

	dishTypeController := controllers.NewDishTypeController(deps.DishTypes)
	dishTypes := protected.Group("/dish_types")
	{
		dishTypes.GET("/", middleware.Authorize(permissions.DishTypeList), dishTypeController.ListDishTypes)
		dishTypes.GET("/create/", middleware.Authorize(permissions.DishTypeCreate), dishTypeController.CreateDishTypeForm)
		dishTypes.POST("/create/", middleware.Authorize(permissions.DishTypeCreate), dishTypeController.CreateDishType)
		dishTypes.GET("/:id/", middleware.Authorize(permissions.DishTypeView), dishTypeController.GetDishType)
		dishTypes.GET("/:id/update/", middleware.Authorize(permissions.DishTypeUpdate), dishTypeController.UpdateDishTypeForm)
		dishTypes.POST("/:id/update/", middleware.Authorize(permissions.DishTypeUpdate), dishTypeController.UpdateDishType)
		dishTypes.GET("/:id/delete/", middleware.Authorize(permissions.DishTypeDelete), dishTypeController.DeleteDishTypeConfirm)
		dishTypes.POST("/:id/delete/", middleware.Authorize(permissions.DishTypeDelete), dishTypeController.DeleteDishType)
	}

	ingredientController := controllers.NewIngredientController(deps.Ingredients)
	ingredients := protected.Group("/ingredients")
	{
		ingredients.GET("/", middleware.Authorize(permissions.IngredientList), ingredientController.ListIngredients)
		ingredients.GET("/create/", middleware.Authorize(permissions.IngredientCreate), ingredientController.CreateIngredientForm)
		ingredients.POST("/create/", middleware.Authorize(permissions.IngredientCreate), ingredientController.CreateIngredient)
		ingredients.GET("/:id/", middleware.Authorize(permissions.IngredientView), ingredientController.GetIngredient)
		ingredients.GET("/:id/update/", middleware.Authorize(permissions.IngredientUpdate), ingredientController.UpdateIngredientForm)
		ingredients.POST("/:id/update/", middleware.Authorize(permissions.IngredientUpdate), ingredientController.UpdateIngredient)
		ingredients.GET("/:id/delete/", middleware.Authorize(permissions.IngredientDelete), ingredientController.DeleteIngredientConfirm)
		ingredients.POST("/:id/delete/", middleware.Authorize(permissions.IngredientDelete), ingredientController.DeleteIngredient)
	}

	dishController := controllers.NewDishController(deps.Dishes, deps.DishTypes, deps.Cooks, deps.Ingredients)
	dishes := protected.Group("/dishes")
	{
		dishes.GET("/", middleware.Authorize(permissions.DishList), dishController.ListDishes)
		dishes.GET("/create/", middleware.Authorize(permissions.DishCreate), dishController.CreateDishForm)
		dishes.POST("/create/", middleware.Authorize(permissions.DishCreate), dishController.CreateDish)
		dishes.GET("/:id/", middleware.Authorize(permissions.DishView), dishController.GetDish)
		dishes.GET("/:id/update/", middleware.Authorize(permissions.DishUpdate), dishController.UpdateDishForm)
		dishes.POST("/:id/update/", middleware.Authorize(permissions.DishUpdate), dishController.UpdateDish)
		dishes.GET("/:id/delete/", middleware.Authorize(permissions.DishDelete), dishController.DeleteDishConfirm)
		dishes.POST("/:id/delete/", middleware.Authorize(permissions.DishDelete), dishController.DeleteDish)
	}
}
