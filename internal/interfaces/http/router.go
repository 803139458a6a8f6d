package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/retail-pro/internal/application/auth"
	"github.com/tu-usuario/retail-pro/internal/application/inventory"
	"github.com/tu-usuario/retail-pro/internal/application/usecase"
	"github.com/tu-usuario/retail-pro/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	EstablishmentUC     *usecase.EstablishmentUseCase
	WarehouseUC         *usecase.WarehouseUseCase
	ProductUC           *usecase.ProductUseCase
	Inventory           *inventory.Facade
	KardexPDF           inventory.KardexPDFGenerator
	AuthUC              *auth.AuthUseCase
	JWTSecret           string
	RespectReservations bool
	AllowNegativeStock  bool
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Establishments (público por ahora; se puede proteger con AuthMiddleware(deps.JWTSecret))
	establishments := api.Group("/establishments")
	establishmentHandler := NewEstablishmentHandler(deps.EstablishmentUC)
	establishments.Get("/", establishmentHandler.List)
	establishments.Post("/", establishmentHandler.Create)
	establishments.Get("/:id", establishmentHandler.GetByID)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Warehouses (protegido; mutaciones solo admin/bodeguero)
	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Post("/", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), warehouseHandler.Create)
	warehouses.Put("/:id", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), warehouseHandler.Update)
	warehouses.Delete("/:id", RequireRole(entity.RoleAdmin), warehouseHandler.Delete)

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), productHandler.Create)
	products.Put("/:id", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), productHandler.Update)
	products.Delete("/:id", RequireRole(entity.RoleAdmin), productHandler.Delete)

	// Motor de inventario (protegido)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Inventory, deps.KardexPDF, deps.RespectReservations, deps.AllowNegativeStock)
	invGroup.Post("/movements", inventoryHandler.ApplyMovement)
	invGroup.Get("/movements", inventoryHandler.Movements)
	invGroup.Post("/sales", inventoryHandler.RegisterSale)
	invGroup.Get("/summary/:product_id", inventoryHandler.Summary)
	invGroup.Get("/allocation-preview/:product_id", inventoryHandler.AllocationPreview)
	invGroup.Get("/kardex/:product_id/pdf", inventoryHandler.KardexPDF)
}
