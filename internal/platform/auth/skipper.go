package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths bypass staff resolution and rate limiting.
var publicPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// Skipper reports whether the request targets an infrastructure endpoint.
func Skipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}

func IsPublicPath(path string) bool {
	return publicPaths[path]
}
