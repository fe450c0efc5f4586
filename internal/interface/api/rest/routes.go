package rest

const (
	// api
	RouteApiV1 = "/api/v1"

	// auth
	RouteAuth   = RouteApiV1 + "/auth"
	RouteOTP    = RouteAuth + "/otp"
	RouteVerify = RouteAuth + "/verify"
	RouteMe     = RouteApiV1 + "/me"

	// files
	RouteFiles       = RouteApiV1 + "/files"
	RouteFile        = RouteFiles + "/:file_id"
	RouteFileName    = RouteFile + "/name"
	RouteFileUsers   = RouteFile + "/users"
	RouteFileActions = RouteFile + "/actions"

	RouteSearch = RouteApiV1 + "/search"
	RouteUsage  = RouteApiV1 + "/usage"

	// ops
	RouteHealth  = RouteApiV1 + "/healthz"
	RouteMetrics = RouteApiV1 + "/metrics"
)

// HeaderViewVersion carries the invalidation counter of the listing a
// response belongs to.
const HeaderViewVersion = "X-View-Version"
