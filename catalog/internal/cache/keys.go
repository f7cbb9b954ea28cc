package cache

const (
	KEY_PRODUCTS     = "studiodflori:products:"
	KEY_PRODUCT_LIST = "studiodflori:products:active"
)
