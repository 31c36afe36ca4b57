package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/monchobi/artschool/internal/app/models/dto"
	"github.com/monchobi/artschool/internal/app/services"
	"github.com/monchobi/artschool/internal/middleware"
)

// CatalogController serves the public class catalog
type CatalogController struct {
	catalogService services.CatalogService
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(catalogService services.CatalogService) *CatalogController {
	return &CatalogController{
		catalogService: catalogService,
	}
}

// ListClasses lists the classes open for enrollment
// @Summary List classes
// @Description Lists approved classes, most recent first
// @Tags classes
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse{items=[]models.Class}} "Classes retrieved"
// @Failure 503 {object} dto.ErrorResponse "Store unavailable, retry later"
// @Router /classes [get]
func (cc *CatalogController) ListClasses(ctx *gin.Context) {
	classes, err := cc.catalogService.ListClasses(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.ListResponse{Items: classes, Count: len(classes)}))
}

// GetClass retrieves one class
// @Summary Get class details
// @Tags classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} dto.APIResponse{data=models.Class} "Class retrieved"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /classes/{id} [get]
func (cc *CatalogController) GetClass(ctx *gin.Context) {
	class, err := cc.catalogService.GetClass(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(class))
}
