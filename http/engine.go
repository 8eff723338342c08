// Package http runs functions locally behind an API Gateway style HTTP server.
package http

import (
	"fmt"
	"os"

	"github.com/aura-studio/lambda-hello/logging"
	"github.com/gin-gonic/gin"
)

type Engine struct {
	*Options
	*gin.Engine
	routes        []Route
	functions     functionTable
	greedyRoutes  []Route
	defaultRoutes []Route
}

// NewEngine loads routes and function configs, checks that every route
// resolves to a function with a registered handler, and installs the routes.
func NewEngine(opts ...Option) (*Engine, error) {
	options := NewOptions(opts...)
	if options.Logger == nil {
		options.Logger = logging.New()
	}
	if !options.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	e := &Engine{
		Options: options,
		Engine:  gin.New(),
	}
	// API Gateway never redirects on a trailing slash.
	e.RedirectTrailingSlash = false
	e.Use(gin.Recovery())
	if e.DebugMode {
		e.Use(gin.Logger())
	}
	if e.CorsMode {
		e.Use(Cors())
	}

	if err := e.load(); err != nil {
		return nil, err
	}
	if err := e.InstallHandlers(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) load() error {
	routes := e.Options.Routes
	if len(routes) == 0 {
		path := e.RoutesFile
		if path == "" {
			p, err := FindDefaultRoutesFile()
			if err != nil {
				return fmt.Errorf("http: %w", err)
			}
			path = p
		}
		r, err := ReadRoutesFile(path)
		if err != nil {
			return err
		}
		routes = r
	} else {
		for i, route := range routes {
			r, err := validateRoute(route, i, "options")
			if err != nil {
				return err
			}
			routes[i] = r
		}
	}
	e.routes = routes

	if err := LoadEnvFile(e.EnvFile); err != nil {
		return err
	}

	functions := e.Options.Functions
	if len(functions) == 0 {
		f, err := LoadFunctions(e.ConfigDir)
		if err != nil {
			return err
		}
		functions = f
	}
	table, err := newFunctionTable(functions)
	if err != nil {
		return err
	}
	e.functions = table

	for _, fn := range functions {
		for k, v := range fn.Environment {
			if err := os.Setenv(k, v); err != nil {
				return fmt.Errorf("http: set environment for %s: %w", fn.Name, err)
			}
		}
		if _, ok := e.Handlers[fn.Handler]; !ok {
			return fmt.Errorf("http: function %s: no handler registered for %q", fn.Name, fn.Handler)
		}
		e.Logger.Debugf("Loaded config for %s from %s", fn.Name, fn.Source)
	}

	for _, route := range e.routes {
		if _, ok := e.functions[route.Lambda]; !ok {
			return fmt.Errorf("http: routes reference unknown function %q (known: %v)", route.Lambda, e.functions.names())
		}
	}
	return nil
}
