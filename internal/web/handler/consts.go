package handler

const (
	// BaseLayout is the default path for layout templates.
	BaseLayout = "layouts/base"

	// RootPath is the root path the route group.
	RootPath = "/"

	// RouterRootPath is the root path inside a route group.
	RouterRootPath = "/"

	// APIPath is the prefix of all JSON endpoints.
	APIPath = "/api"

	// NoAccessTemplate is rendered when a signed-in user may not see a page.
	NoAccessTemplate = "noaccess"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"
)
