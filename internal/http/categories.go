package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// CategoryAPI is the category surface used by CategoriesController.
// Implemented by services.CategoryService.
type CategoryAPI interface {
	CreateCategory(ctx context.Context, owner uint, name string) (*entities.Category, error)
	ListCategories(ctx context.Context, owner uint) ([]entities.Category, error)
	SwapPositions(ctx context.Context, owner uint, name string, newPosition int) error
	BulkSetPositions(ctx context.Context, owner uint, positions map[string]int) error
	RenameCategory(ctx context.Context, owner uint, name, newName string) (*entities.Category, error)
	DeleteCategory(ctx context.Context, owner uint, name string) error
	NormalizePositions(ctx context.Context, owner uint) (int, error)
}

// CategoriesController serves the user's categories and their ordering.
type CategoriesController struct {
	categories CategoryAPI
	taskClient *tasks.Client
}

// NewCategoriesController creates a controller. taskClient may be nil, in
// which case normalisation runs within the request.
func NewCategoriesController(categories CategoryAPI, taskClient *tasks.Client) *CategoriesController {
	return &CategoriesController{categories: categories, taskClient: taskClient}
}

type categoryNameRequest struct {
	Name string `json:"name" binding:"required"`
}

type swapRequest struct {
	Position *int `json:"position" binding:"required"`
}

type positionsRequest struct {
	Positions map[string]int `json:"positions" binding:"required"`
}

// List handles GET /api/categories
func (cc *CategoriesController) List(c *gin.Context) {
	list, err := cc.categories.ListCategories(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondStoreError(c, err, "list categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": list, "count": len(list)})
}

// Create handles POST /api/categories
func (cc *CategoriesController) Create(c *gin.Context) {
	var req categoryNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	category, err := cc.categories.CreateCategory(c.Request.Context(), GetUserID(c), req.Name)
	if err != nil {
		respondStoreError(c, err, "create category")
		return
	}
	respondCreated(c, category)
}

// Rename handles PATCH /api/categories/:name
func (cc *CategoriesController) Rename(c *gin.Context) {
	var req categoryNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	category, err := cc.categories.RenameCategory(c.Request.Context(), GetUserID(c), c.Param("name"), req.Name)
	if err != nil {
		respondStoreError(c, err, "rename category")
		return
	}
	c.JSON(http.StatusOK, category)
}

// Delete handles DELETE /api/categories/:name
func (cc *CategoriesController) Delete(c *gin.Context) {
	name := c.Param("name")
	if err := cc.categories.DeleteCategory(c.Request.Context(), GetUserID(c), name); err != nil {
		respondStoreError(c, err, "delete category")
		return
	}
	c.Status(http.StatusNoContent)
}

// Swap handles POST /api/categories/:name/swap
// Exchanges the category's position with the category at the requested one.
func (cc *CategoriesController) Swap(c *gin.Context) {
	var req swapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "position is required")
		return
	}

	ctx := c.Request.Context()
	owner := GetUserID(c)
	if err := cc.categories.SwapPositions(ctx, owner, c.Param("name"), *req.Position); err != nil {
		respondStoreError(c, err, "swap category positions")
		return
	}
	cc.respondList(c, owner)
}

// SetPositions handles PUT /api/categories/positions
// Applies a complete reordering at once; either every position changes or none.
func (cc *CategoriesController) SetPositions(c *gin.Context) {
	var req positionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "positions must be an object of category name to position")
		return
	}

	ctx := c.Request.Context()
	owner := GetUserID(c)
	if err := cc.categories.BulkSetPositions(ctx, owner, req.Positions); err != nil {
		respondStoreError(c, err, "set category positions")
		return
	}
	cc.respondList(c, owner)
}

// Normalize handles POST /api/categories/normalize
// Enqueues a background renumbering when the task queue runs, otherwise
// renumbers within the request.
func (cc *CategoriesController) Normalize(c *gin.Context) {
	owner := GetUserID(c)

	if cc.taskClient != nil {
		ids, err := cc.taskClient.Add(tasks.NormalizePositionsTask{UserID: owner}).Save()
		if err != nil {
			respondInternalError(c, err, "enqueue normalisation")
			return
		}
		respondAccepted(c, "normalisation enqueued", gin.H{"task_id": ids[0]})
		return
	}

	moved, err := cc.categories.NormalizePositions(c.Request.Context(), owner)
	if err != nil {
		respondStoreError(c, err, "normalize positions")
		return
	}
	respondSuccess(c, "positions normalized", gin.H{"moved": moved})
}

func (cc *CategoriesController) respondList(c *gin.Context, owner uint) {
	list, err := cc.categories.ListCategories(c.Request.Context(), owner)
	if err != nil {
		respondStoreError(c, err, "list categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": list, "count": len(list)})
}
