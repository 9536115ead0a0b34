package errors

import "net/http"

const (
	CodeAssetNotFound    = "ASSET_NOT_FOUND"
	CodeInvalidAssetName = "INVALID_ASSET_NAME"
	CodeAssetReadError   = "ASSET_READ_ERROR"
	CodeGPXParseError    = "GPX_PARSE_ERROR"
	CodeTrackTooShort    = "TRACK_TOO_SHORT"
	CodeRoutingError     = "ROUTING_ERROR"
	CodeNoRoutes         = "NO_ROUTES"
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeInternalServer   = "INTERNAL_SERVER_ERROR"
)

var (
	ErrAssetNotFound = New(
		CodeAssetNotFound,
		"GPX asset not found",
		http.StatusNotFound,
	)

	ErrInvalidAssetName = New(
		CodeInvalidAssetName,
		"Invalid GPX asset name",
		http.StatusBadRequest,
	)

	ErrAssetRead = New(
		CodeAssetReadError,
		"Failed to read GPX asset",
		http.StatusInternalServerError,
	)

	ErrGPXParse = New(
		CodeGPXParseError,
		"Failed to parse GPX document",
		http.StatusUnprocessableEntity,
	)

	// ErrTrackTooShort - у первого трека меньше двух точек, маршрут не из чего строить
	ErrTrackTooShort = New(
		CodeTrackTooShort,
		"Track has fewer than two points",
		http.StatusUnprocessableEntity,
	)

	ErrRouting = New(
		CodeRoutingError,
		"Route planning failed",
		http.StatusBadGateway,
	)

	ErrNoRoutes = New(
		CodeNoRoutes,
		"Routing provider returned no routes",
		http.StatusBadGateway,
	)

	ErrInvalidRequest = New(
		CodeInvalidRequest,
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		CodeInternalServer,
		"Internal server error",
		http.StatusInternalServerError,
	)
)
