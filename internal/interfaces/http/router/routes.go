package router

import (
	"github.com/assetflow/backend/internal/interfaces/http/handler"
)

// Handlers bundles the HTTP handlers wired into the route tree.
type Handlers struct {
	System      *handler.SystemHandler
	Branch      *handler.BranchHandler
	Asset       *handler.AssetHandler
	Transfer    *handler.TransferOrderHandler
	Maintenance *handler.MaintenanceHandler
	Inventory   *handler.InventoryHandler
	Debt        *handler.DebtHandler
}

// BuildRoutes assembles the domain route groups for the API.
func BuildRoutes(h Handlers) []RouteRegistrar {
	system := NewDomainGroup("system", "/system").
		GET("/info", h.System.GetSystemInfo)

	branches := NewDomainGroup("branches", "/branches").
		POST("", h.Branch.Create).
		GET("", h.Branch.List).
		GET("/:id", h.Branch.Get).
		PUT("/:id", h.Branch.Update).
		POST("/:id/deactivate", h.Branch.Deactivate).
		GET("/:id/children", h.Branch.Children).
		// branch-scoped collections
		POST("/:id/assets", h.Asset.Register).
		GET("/:id/assets", h.Asset.ListByBranch).
		GET("/:id/transfers", h.Transfer.ListByBranch).
		GET("/:id/assignments", h.Maintenance.ListByCenter).
		GET("/:id/approvals", h.Maintenance.ListPendingApprovals).
		GET("/:id/inventory", h.Inventory.List).
		POST("/:id/inventory/parts", h.Inventory.CreatePart).
		PUT("/:id/inventory/parts/:code/min-quantity", h.Inventory.SetMinQuantity).
		PUT("/:id/inventory/parts/:code/price", h.Inventory.SetUnitPrice).
		POST("/:id/inventory/replenish", h.Inventory.Replenish).
		POST("/:id/inventory/adjust", h.Inventory.Adjust).
		GET("/:id/inventory/low-stock", h.Inventory.ListLowStock).
		GET("/:id/inventory/movements", h.Inventory.ListMovements).
		GET("/:id/debts/owed-by", h.Debt.ListOwedBy).
		GET("/:id/debts/owed-to", h.Debt.ListOwedTo)

	assets := NewDomainGroup("assets", "/assets").
		GET("/:serial", h.Asset.Get).
		GET("/:serial/history", h.Asset.History).
		POST("/:serial/sold", h.Asset.MarkSold).
		POST("/:serial/scrapped", h.Asset.MarkScrapped)

	assetImports := NewDomainGroup("asset-imports", "/asset-imports").
		POST("", h.Asset.Import)

	transfers := NewDomainGroup("transfers", "/transfers").
		POST("", h.Transfer.Create).
		GET("/:id", h.Transfer.Get).
		POST("/:id/receive", h.Transfer.Receive).
		POST("/:id/reject", h.Transfer.Reject).
		POST("/:id/cancel", h.Transfer.Cancel)

	maintenance := NewDomainGroup("maintenance", "/maintenance").
		POST("/intake", h.Maintenance.Intake).
		POST("/assignments", h.Maintenance.Assign).
		POST("/transitions", h.Maintenance.Transition).
		GET("/assignments/:id", h.Maintenance.GetAssignment).
		PUT("/assignments/:id/diagnosis", h.Maintenance.Diagnose).
		POST("/assignments/:id/complete", h.Maintenance.Complete).
		POST("/assignments/:id/close", h.Maintenance.Close).
		POST("/approvals", h.Maintenance.RequestApproval).
		POST("/approvals/:id/respond", h.Maintenance.RespondApproval)

	debts := NewDomainGroup("debts", "/debts").
		GET("/:id", h.Debt.Get).
		POST("/:id/payments", h.Debt.RecordPayment)

	return []RouteRegistrar{
		system,
		branches,
		assets,
		assetImports,
		transfers,
		maintenance,
		debts,
	}
}
