package domain

// IssueReason is the reason a line item cannot be purchased as is.
type IssueReason int

const (
	IssueInactive IssueReason = iota + 1
	IssueOutOfStock
)

const (
	LabelUnavailable = "indisponible"
	LabelOutOfStock  = "rupture"
)

func (r IssueReason) Label() string {
	switch r {
	case IssueInactive:
		return LabelUnavailable
	case IssueOutOfStock:
		return LabelOutOfStock
	default:
		return ""
	}
}

func (r IssueReason) String() string {
	switch r {
	case IssueInactive:
		return "inactive"
	case IssueOutOfStock:
		return "out_of_stock"
	default:
		return "unknown"
	}
}

func IsOutOfStock(item LineItem) bool {
	return item.SKU.Inventory < item.Quantity
}

func IsInactive(item LineItem) bool {
	return !item.SKU.IsPurchasable()
}

func HasIssue(item LineItem) bool {
	return IsOutOfStock(item) || IsInactive(item)
}

// Issue reports the blocking reason for item. Inactive wins over out of stock.
// TODO: confirm the inactive-first tie-break with the shop owner, it only affects the label shown.
func Issue(item LineItem) (IssueReason, bool) {
	switch {
	case IsInactive(item):
		return IssueInactive, true
	case IsOutOfStock(item):
		return IssueOutOfStock, true
	}
	return 0, false
}

func IssueLabel(item LineItem) (string, bool) {
	reason, ok := Issue(item)
	if !ok {
		return "", false
	}
	return reason.Label(), true
}

// CanFulfil reports whether sku can currently be bought in quantity qty.
func CanFulfil(sku SKUSnapshot, qty int) bool {
	return sku.IsPurchasable() && sku.Inventory >= qty
}
