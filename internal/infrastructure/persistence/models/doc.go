// Package models holds the gorm table mappings. Domain entities stay free
// of ORM tags; the repositories convert through the mappers in the parent
// persistence package.
//
// One file per domain area: org.go for the branch hierarchy, asset.go for
// assets and movement logs, transfer.go for transfer orders and manifest
// lines, maintenance.go for service assignments, part lines and approvals,
// inventory.go for inventory items and stock movements, finance.go for
// branch debts. base.go carries the embedded model bases.
package models
