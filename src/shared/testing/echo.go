package testing

import (
	"github.com/labstack/echo/v4"
	"net/http"
	"sort"
)

// Route is the part of routing a gateway handler can observe on its context
type Route struct {
	Path   string
	Params map[string]string
}

func PrepareEchoContext(request *http.Request, response http.ResponseWriter) echo.Context {
	return PrepareRouteContext(request, response, Route{Path: request.URL.Path})
}

// PrepareRouteContext builds a context as if echo's router had matched route
func PrepareRouteContext(request *http.Request, response http.ResponseWriter, route Route) echo.Context {
	e := echo.New()
	e.HideBanner = true

	c := e.NewContext(request, response)
	c.SetPath(route.Path)

	names := make([]string, 0, len(route.Params))
	for name := range route.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([]string, len(names))
	for i, name := range names {
		values[i] = route.Params[name]
	}

	c.SetParamNames(names...)
	c.SetParamValues(values...)

	return c
}
