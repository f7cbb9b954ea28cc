package log

const (
	KeyAppName       = "app"
	KeyTag           = "tag"
	KeyProcess       = "process"
	KeyConfig        = "config"
	KeyRequestID     = "requestId"
	KeyRequestBody   = "requestBody"
	KeyRequestHost   = "host"
	KeyRequestIp     = "requesterIP"
	KeyRequestMethod = "requestMethod"
	KeyRequestURI    = "requestURI"
	KeyRequestURL    = "requestURL"
	KeyTraceID       = "traceId"
	KeySpanID        = "spanId"

	KeySessionID   = "sessionId"
	KeyProductID   = "productId"
	KeyProductName = "productName"
	KeyCart        = "cart"
	KeyCartItems   = "cartItems"
	KeyCacheKey    = "cacheKey"
	KeyDelivery    = "delivery"
	KeyCity        = "city"
	KeyDate        = "date"
	KeyTime        = "time"
	KeyProvider    = "provider"
	KeyAmount      = "amount"
	KeyDbURL       = "dbUrl"
	KeyPathValues  = "pathValues"
)
