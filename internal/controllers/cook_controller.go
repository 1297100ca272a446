package controllers

import (
	"context"
	"net/http"

	"github.com/franciscosanchezn/gin-kitchen/internal/forms"
	"github.com/franciscosanchezn/gin-kitchen/internal/listing"
	"github.com/franciscosanchezn/gin-kitchen/internal/middleware"
	"github.com/franciscosanchezn/gin-kitchen/internal/models"
	"github.com/franciscosanchezn/gin-kitchen/internal/permissions"
	"github.com/franciscosanchezn/gin-kitchen/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const cookListURL = "/cooks/"

// SessionRevoker ends sessions after a password change
type SessionRevoker interface {
	RevokeOthers(ctx context.Context, current models.Session) error
	RevokeAll(ctx context.Context, cookID uint) error
}

// CookController handles HTTP requests related to cooks
type CookController interface {
	// ListCooks returns one page of cooks, searchable by username and names
	ListCooks(ctx *gin.Context)
	// GetCook returns a cook together with the dishes assigned to them
	GetCook(ctx *gin.Context)
	CreateCookForm(ctx *gin.Context)
	CreateCook(ctx *gin.Context)
	UpdateCookForm(ctx *gin.Context)
	UpdateCook(ctx *gin.Context)
	DeleteCookConfirm(ctx *gin.Context)
	DeleteCook(ctx *gin.Context)
	PasswordChangeForm(ctx *gin.Context)
	PasswordChange(ctx *gin.Context)
	PasswordChangeDone(ctx *gin.Context)
}

type cookController struct {
	cooks    services.CookService
	dishes   services.DishService
	sessions SessionRevoker
}

// NewCookController creates a new instance of CookController
func NewCookController(cooks services.CookService, dishes services.DishService, sessions SessionRevoker) CookController {
	return &cookController{cooks: cooks, dishes: dishes, sessions: sessions}
}

// ListCooks godoc
// @Summary List cooks
// @Description Paginated list of cooks with search and ordering
// @Tags cooks
// @Produce json
// @Security BearerAuth
// @Param username query string false "Case-insensitive search on the username"
// @Param title query string false "Search term used when username is empty"
// @Param order_by query string false "Comma-separated order keys, e.g. name_desc"
// @Param page query string false "Page number, or last for the final page"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /cooks/ [get]
func (c *cookController) ListCooks(ctx *gin.Context) {
	result, err := c.cooks.ListCooks(listParams(ctx, "username"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"cook_list":     result.Items,
		"page":          result.Page,
		"search":        gin.H{"username": result.Search},
		"current_order": result.OrderBy,
		"order_options": listing.Cooks.Keys(),
	})
}

// GetCook godoc
// @Summary Get cook by ID
// @Description Cook detail with the dishes assigned to the cook
// @Tags cooks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Cook ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /cooks/{id}/ [get]
func (c *cookController) GetCook(ctx *gin.Context) {
	cook, ok := c.loadCook(ctx)
	if !ok {
		return
	}
	dishes, err := c.dishes.ListDishesByCook(cook.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	actor := middleware.CurrentCook(ctx)
	ctx.JSON(http.StatusOK, gin.H{
		"cook":       cook,
		"full_name":  cook.FullName(),
		"dishes":     dishes,
		"can_update": permissions.Check(actor, &cook, permissions.CookUpdate) == nil,
		"can_delete": permissions.Check(actor, &cook, permissions.CookDelete) == nil,
	})
}

// CreateCookForm godoc
// @Summary Cook creation form
// @Description Fields and choices for creating a cook
// @Tags cooks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Router /cooks/create/ [get]
func (c *cookController) CreateCookForm(ctx *gin.Context) {
	actor := middleware.CurrentCook(ctx)
	ctx.JSON(http.StatusOK, gin.H{
		"fields":  forms.CookCreationFields(actor),
		"initial": gin.H{"years_of_experience": 0},
	})
}

// CreateCook godoc
// @Summary Create a cook
// @Description Create a new cook; only staff may do this
// @Tags cooks
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param cook body forms.CookCreationForm true "Cook data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Router /cooks/create/ [post]
func (c *cookController) CreateCook(ctx *gin.Context) {
	actor := middleware.CurrentCook(ctx)
	var form forms.CookCreationForm
	if !bind(ctx, &form) {
		return
	}
	form.Restrict(actor)
	if errs := form.Validate(); errs.Any() {
		respondFieldErrors(ctx, errs)
		return
	}

	cook, err := form.Cook()
	if err != nil {
		respondError(ctx, err)
		return
	}
	created, err := c.cooks.CreateCook(cook)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondCreated(ctx, "cook", created, created.AbsoluteURL())
}

// UpdateCookForm godoc
// @Summary Cook update form
// @Description Fields and current values of a cook
// @Tags cooks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Cook ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /cooks/{id}/update/ [get]
func (c *cookController) UpdateCookForm(ctx *gin.Context) {
	cook, ok := c.loadCook(ctx)
	if !ok || !allow(ctx, &cook, permissions.CookUpdate) {
		return
	}
	actor := middleware.CurrentCook(ctx)
	ctx.JSON(http.StatusOK, gin.H{
		"cook":    cook,
		"fields":  forms.CookUpdateFields(actor),
		"initial": forms.CookInitial(cook, actor),
	})
}

// UpdateCook godoc
// @Summary Update a cook
// @Description Update an existing cook
// @Tags cooks
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param id path int true "Cook ID"
// @Param cook body forms.CookUpdateForm true "Cook data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /cooks/{id}/update/ [post]
func (c *cookController) UpdateCook(ctx *gin.Context) {
	cook, ok := c.loadCook(ctx)
	if !ok || !allow(ctx, &cook, permissions.CookUpdate) {
		return
	}
	var form forms.CookUpdateForm
	if !bind(ctx, &form) {
		return
	}
	form.Restrict(middleware.CurrentCook(ctx))
	if errs := form.Validate(); errs.Any() {
		respondFieldErrors(ctx, errs)
		return
	}

	form.Apply(&cook)
	updated, err := c.cooks.UpdateCook(cook)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"cook": updated, "success_url": updated.AbsoluteURL()})
}

// DeleteCookConfirm godoc
// @Summary Confirm cook deletion
// @Description The cook that would be deleted
// @Tags cooks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Cook ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /cooks/{id}/delete/ [get]
func (c *cookController) DeleteCookConfirm(ctx *gin.Context) {
	cook, ok := c.loadCook(ctx)
	if !ok || !allow(ctx, &cook, permissions.CookDelete) {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"cook": cook, "object": cook.String()})
}

// DeleteCook godoc
// @Summary Delete a cook
// @Description Delete a cook
// @Tags cooks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Cook ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /cooks/{id}/delete/ [post]
func (c *cookController) DeleteCook(ctx *gin.Context) {
	cook, ok := c.loadCook(ctx)
	if !ok || !allow(ctx, &cook, permissions.CookDelete) {
		return
	}
	if err := c.cooks.DeleteCook(cook.ID); err != nil {
		respondError(ctx, err)
		return
	}
	log.WithFields(logrus.Fields{
		"cook_id":    cook.ID,
		"deleted_by": middleware.CurrentCook(ctx).ID,
	}).Info("Cook deleted")
	ctx.JSON(http.StatusOK, gin.H{"deleted": true, "success_url": cookListURL})
}

// PasswordChangeForm asks the cook for the old password, a superuser
// setting somebody else's password gives only the new pair
// @Summary Password change form
// @Description Fields of the password change form
// @Tags cooks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Cook ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /cooks/{id}/password-change/ [get]
func (c *cookController) PasswordChangeForm(ctx *gin.Context) {
	cook, ok := c.loadCook(ctx)
	if !ok || !allow(ctx, &cook, permissions.CookPasswordChange) {
		return
	}
	fields := forms.PasswordChangeFields
	if !isSelf(ctx, cook) {
		fields = forms.SetPasswordFields
	}
	ctx.JSON(http.StatusOK, gin.H{"cook": cook, "fields": fields})
}

// PasswordChange stores a new password. A cook changing their own password
// stays signed in on the current session only; every session of another
// cook is ended.
// @Summary Change a cook's password
// @Description Set a new password. old_password is required when changing one's own password
// @Tags cooks
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param id path int true "Cook ID"
// @Param password body forms.PasswordChangeForm true "Old and new passwords"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /cooks/{id}/password-change/ [post]
func (c *cookController) PasswordChange(ctx *gin.Context) {
	cook, ok := c.loadCook(ctx)
	if !ok || !allow(ctx, &cook, permissions.CookPasswordChange) {
		return
	}

	self := isSelf(ctx, cook)
	var password string
	if self {
		var form forms.PasswordChangeForm
		if !bind(ctx, &form) {
			return
		}
		if errs := form.Validate(cook); errs.Any() {
			respondFieldErrors(ctx, errs)
			return
		}
		password = form.NewPassword1
	} else {
		var form forms.SetPasswordForm
		if !bind(ctx, &form) {
			return
		}
		if errs := form.Validate(cook); errs.Any() {
			respondFieldErrors(ctx, errs)
			return
		}
		password = form.NewPassword1
	}

	if err := c.cooks.SetPassword(cook.ID, password); err != nil {
		respondError(ctx, err)
		return
	}

	var err error
	if session, ok := middleware.CurrentSession(ctx); ok && self {
		err = c.sessions.RevokeOthers(ctx.Request.Context(), session)
	} else {
		err = c.sessions.RevokeAll(ctx.Request.Context(), cook.ID)
	}
	if err != nil {
		log.WithError(err).WithField("cook_id", cook.ID).Error("Failed to revoke sessions after password change")
	}

	ctx.JSON(http.StatusOK, gin.H{"success_url": cook.AbsoluteURL() + "password-change/done/"})
}

// PasswordChangeDone godoc
// @Summary Password change done
// @Description Confirmation after a password change
// @Tags cooks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Cook ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /cooks/{id}/password-change/done/ [get]
func (c *cookController) PasswordChangeDone(ctx *gin.Context) {
	cook, ok := c.loadCook(ctx)
	if !ok || !allow(ctx, &cook, permissions.CookPasswordChange) {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"cook": cook, "message": "Your password was changed."})
}

func (c *cookController) loadCook(ctx *gin.Context) (models.Cook, bool) {
	id, ok := pathID(ctx, models.ErrCookNotFound, "Cook not found")
	if !ok {
		return models.Cook{}, false
	}
	cook, err := c.cooks.GetCookByID(id)
	if err != nil {
		respondError(ctx, err)
		return models.Cook{}, false
	}
	return cook, true
}

func isSelf(ctx *gin.Context, cook models.Cook) bool {
	actor := middleware.CurrentCook(ctx)
	return actor != nil && actor.ID == cook.ID
}
