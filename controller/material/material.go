package material

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sitecrew/access"
	"sitecrew/apperr"
	"sitecrew/controller"
	"sitecrew/dto"
	"sitecrew/middleware"
	"sitecrew/model"
	"sitecrew/services"
)

func MaterialController(router *gin.Engine, deps *controller.Deps) {
	manage := middleware.Require(access.CanManageMaterials)

	routes := router.Group("/materials", deps.Auth()...)
	{
		routes.GET("", func(c *gin.Context) {
			ListMaterials(c, deps)
		})
		routes.POST("", manage, func(c *gin.Context) {
			CreateMaterial(c, deps)
		})
		routes.PUT("/:id", manage, func(c *gin.Context) {
			UpdateMaterial(c, deps)
		})
		routes.DELETE("/:id", manage, func(c *gin.Context) {
			DeactivateMaterial(c, deps)
		})
	}
}

type priced struct {
	model.Material
	UnitPrice string `json:"unit_price"`
}

func withPrice(m model.Material) priced {
	return priced{Material: m, UnitPrice: services.FormatCents(m.UnitPriceCents)}
}

func ListMaterials(c *gin.Context, deps *controller.Deps) {
	includeInactive := c.Query("include_inactive") == "true"
	materials, err := deps.Store.ListMaterials(c, c.Query("category"), includeInactive)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	out := make([]priced, 0, len(materials))
	for _, m := range materials {
		out = append(out, withPrice(m))
	}
	controller.OK(c, http.StatusOK, "materials", out)
}

func CreateMaterial(c *gin.Context, deps *controller.Deps) {
	var req dto.CreateMaterialRequest
	if !controller.Bind(c, &req) {
		return
	}
	m := &model.Material{
		SKU:            req.SKU,
		Name:           strings.TrimSpace(req.Name),
		Unit:           req.Unit,
		UnitPriceCents: req.UnitPriceCents,
		Category:       req.Category,
	}
	if err := deps.Store.CreateMaterial(c, m); err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusCreated, "material", withPrice(*m))
}

func UpdateMaterial(c *gin.Context, deps *controller.Deps) {
	var req dto.UpdateMaterialRequest
	if !controller.Bind(c, &req) {
		return
	}
	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Unit != nil {
		updates["unit"] = *req.Unit
	}
	if req.UnitPriceCents != nil {
		updates["unit_price_cents"] = *req.UnitPriceCents
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if len(updates) == 0 {
		apperr.Respond(c, apperr.Validationf("no fields to update"))
		return
	}
	m, err := deps.Store.UpdateMaterial(c, c.Param("id"), updates)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusOK, "material", withPrice(*m))
}

func DeactivateMaterial(c *gin.Context, deps *controller.Deps) {
	if err := deps.Store.DeactivateMaterial(c, c.Param("id")); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Material deactivated"})
}
