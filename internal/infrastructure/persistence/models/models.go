package models

// AllModels returns every persistence model, mainly for schema migration in tests.
func AllModels() []interface{} {
	return []interface{}{
		&BranchModel{},
		&AssetModel{},
		&MovementLogModel{},
		&TransferOrderModel{},
		&TransferOrderItemModel{},
		&ServiceAssignmentModel{},
		&PartLineModel{},
		&MaintenanceApprovalModel{},
		&InventoryItemModel{},
		&StockMovementModel{},
		&BranchDebtModel{},
	}
}
