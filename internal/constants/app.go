package constants

const (
	APP_CATALOG_SERVICE  = "catalog-service"
	APP_CART_SERVICE     = "cart-service"
	APP_CHECKOUT_SERVICE = "checkout-service"
	APP_MAIN_STOREFRONT  = "storefront"
)
