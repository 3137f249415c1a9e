package domain

import "github.com/shopspring/decimal"

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

var Tables = []interface{}{
	// System
	&SysUser{},
	&Notification{},
	// Catalogue
	&Client{},
	&Professional{},
	&LabService{},
	&Material{},
	// Orders
	&WorkOrder{},
	&OrderItem{},
	// Finance
	&AccountEntry{},
}
