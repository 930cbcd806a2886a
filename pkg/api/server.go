// Package api holds the HTTP contract of the service: the OpenAPI document,
// its request and response types and the gin routing for it.
//
// server.go and types.go are maintained by hand. They follow the layout
// oapi-codegen emits for gin servers (ServerInterface, ServerInterfaceWrapper,
// RegisterHandlers, one wrapper method per operationId) so handlers are
// written the same way they would be against generated code. Nothing
// regenerates them; api_test.go fails when routes, wrapper names or
// operations drift from openapi.yaml.
package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
)

const (
	// BearerAuthScopes is the gin context key holding the scopes an
	// operation requires. Public operations leave it unset.
	BearerAuthScopes = "BearerAuth.Scopes"
	// ScopeAdmin marks operational endpoints
	ScopeAdmin = "admin"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /health)
	GetHealth(c *gin.Context)
	// (POST /api/v1/auth/login)
	PostApiV1AuthLogin(c *gin.Context)

	// (GET /api/v1/products)
	GetApiV1Products(c *gin.Context, params GetApiV1ProductsParams)
	// (POST /api/v1/products)
	PostApiV1Products(c *gin.Context)
	// (POST /api/v1/products/import)
	PostApiV1ProductsImport(c *gin.Context)
	// (GET /api/v1/products/{id})
	GetApiV1ProductsId(c *gin.Context, id string)
	// (PUT /api/v1/products/{id})
	PutApiV1ProductsId(c *gin.Context, id string)
	// (DELETE /api/v1/products/{id})
	DeleteApiV1ProductsId(c *gin.Context, id string)

	// (GET /api/v1/dishes)
	GetApiV1Dishes(c *gin.Context)
	// (POST /api/v1/dishes)
	PostApiV1Dishes(c *gin.Context)
	// (GET /api/v1/dishes/{id})
	GetApiV1DishesId(c *gin.Context, id string)
	// (PUT /api/v1/dishes/{id})
	PutApiV1DishesId(c *gin.Context, id string)
	// (DELETE /api/v1/dishes/{id})
	DeleteApiV1DishesId(c *gin.Context, id string)

	// (GET /api/v1/entries)
	GetApiV1Entries(c *gin.Context, params GetApiV1EntriesParams)
	// (POST /api/v1/entries)
	PostApiV1Entries(c *gin.Context)
	// (GET /api/v1/entries/{id})
	GetApiV1EntriesId(c *gin.Context, id string)
	// (PUT /api/v1/entries/{id})
	PutApiV1EntriesId(c *gin.Context, id string)
	// (DELETE /api/v1/entries/{id})
	DeleteApiV1EntriesId(c *gin.Context, id string)

	// (GET /api/v1/stats/daily)
	GetApiV1StatsDaily(c *gin.Context, params StatsParams)
	// (GET /api/v1/stats/weekly)
	GetApiV1StatsWeekly(c *gin.Context, params StatsParams)
	// (GET /api/v1/stats/weekly/report)
	GetApiV1StatsWeeklyReport(c *gin.Context, params StatsParams)

	// (GET /api/v1/fasting/types)
	GetApiV1FastingTypes(c *gin.Context)
	// (POST /api/v1/fasting/start)
	PostApiV1FastingStart(c *gin.Context)
	// (POST /api/v1/fasting/pause)
	PostApiV1FastingPause(c *gin.Context)
	// (POST /api/v1/fasting/resume)
	PostApiV1FastingResume(c *gin.Context)
	// (POST /api/v1/fasting/cancel)
	PostApiV1FastingCancel(c *gin.Context)
	// (POST /api/v1/fasting/end)
	PostApiV1FastingEnd(c *gin.Context)
	// (GET /api/v1/fasting/progress)
	GetApiV1FastingProgress(c *gin.Context)
	// (GET /api/v1/fasting/sessions)
	GetApiV1FastingSessions(c *gin.Context, params GetApiV1FastingSessionsParams)
	// (GET /api/v1/fasting/sessions/{id})
	GetApiV1FastingSessionsId(c *gin.Context, id string)
	// (PATCH /api/v1/fasting/sessions/{id})
	PatchApiV1FastingSessionsId(c *gin.Context, id string)
	// (DELETE /api/v1/fasting/sessions/{id})
	DeleteApiV1FastingSessionsId(c *gin.Context, id string)
	// (GET /api/v1/fasting/stats)
	GetApiV1FastingStats(c *gin.Context)
	// (GET /api/v1/fasting/gki)
	GetApiV1FastingGki(c *gin.Context, params GetApiV1FastingGkiParams)

	// (GET /api/v1/goals)
	GetApiV1Goals(c *gin.Context)
	// (POST /api/v1/goals)
	PostApiV1Goals(c *gin.Context)
	// (GET /api/v1/goals/{id})
	GetApiV1GoalsId(c *gin.Context, id string)
	// (DELETE /api/v1/goals/{id})
	DeleteApiV1GoalsId(c *gin.Context, id string)

	// (GET /api/v1/profile)
	GetApiV1Profile(c *gin.Context)
	// (PUT /api/v1/profile)
	PutApiV1Profile(c *gin.Context)
	// (GET /api/v1/profile/targets)
	GetApiV1ProfileTargets(c *gin.Context)

	// (POST /api/v1/tasks)
	PostApiV1Tasks(c *gin.Context)
	// (GET /api/v1/tasks/{id})
	GetApiV1TasksId(c *gin.Context, id string)

	// (GET /api/v1/admin/backups)
	GetApiV1AdminBackups(c *gin.Context)
	// (POST /api/v1/admin/backups)
	PostApiV1AdminBackups(c *gin.Context)
	// (POST /api/v1/admin/backups/{name}/restore)
	PostApiV1AdminBackupsNameRestore(c *gin.Context, name string)
	// (GET /api/v1/admin/audit)
	GetApiV1AdminAudit(c *gin.Context, params GetApiV1AdminAuditParams)
}

// MiddlewareFunc runs after the operation's security scopes are set and
// before its parameters are bound
type MiddlewareFunc func(c *gin.Context)

// ServerInterfaceWrapper converts gin contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandler       func(*gin.Context, error, int)
}

type security int

const (
	public security = iota
	bearer
	admin
)

// serve sets the operation's scopes, runs the middlewares and then call
// unless one of them aborted
func (siw *ServerInterfaceWrapper) serve(c *gin.Context, sec security, call func()) {
	switch sec {
	case bearer:
		c.Set(BearerAuthScopes, []string{})
	case admin:
		c.Set(BearerAuthScopes, []string{ScopeAdmin})
	}

	for _, middleware := range siw.HandlerMiddlewares {
		middleware(c)
		if c.IsAborted() {
			return
		}
	}

	call()
}

func (siw *ServerInterfaceWrapper) pathParam(c *gin.Context, name string, dest *string) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter %s: %w", name, err), http.StatusBadRequest)
		return false
	}
	return true
}

func (siw *ServerInterfaceWrapper) queryParam(c *gin.Context, name string, required bool, dest any) bool {
	if err := runtime.BindQueryParameter("form", true, required, name, c.Request.URL.Query(), dest); err != nil {
		siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter %s: %w", name, err), http.StatusBadRequest)
		return false
	}
	return true
}

// withID binds the {id} path parameter before calling fn
func (siw *ServerInterfaceWrapper) withID(c *gin.Context, sec security, fn func(*gin.Context, string)) {
	siw.serve(c, sec, func() {
		var id string
		if siw.pathParam(c, "id", &id) {
			fn(c, id)
		}
	})
}

func (siw *ServerInterfaceWrapper) statsParams(c *gin.Context, fn func(*gin.Context, StatsParams)) {
	siw.serve(c, bearer, func() {
		var params StatsParams
		if siw.queryParam(c, "date", false, &params.Date) {
			fn(c, params)
		}
	})
}

// GetHealth operation middleware
func (siw *ServerInterfaceWrapper) GetHealth(c *gin.Context) {
	siw.serve(c, public, func() { siw.Handler.GetHealth(c) })
}

// PostApiV1AuthLogin operation middleware
func (siw *ServerInterfaceWrapper) PostApiV1AuthLogin(c *gin.Context) {
	siw.serve(c, public, func() { siw.Handler.PostApiV1AuthLogin(c) })
}

// GetApiV1Products operation middleware
func (siw *ServerInterfaceWrapper) GetApiV1Products(c *gin.Context) {
	siw.serve(c, bearer, func() {
		var params GetApiV1ProductsParams
		if !siw.queryParam(c, "search", false, &params.Search) ||
			!siw.queryParam(c, "category", false, &params.Category) ||
			!siw.queryParam(c, "limit", false, &params.Limit) ||
			!siw.queryParam(c, "offset", false, &params.Offset) {
			return
		}
		siw.Handler.GetApiV1Products(c, params)
	})
}

// PostApiV1Products operation middleware
func (siw *ServerInterfaceWrapper) PostApiV1Products(c *gin.Context) {
	siw.serve(c, bearer, func() { siw.Handler.PostApiV1Products(c) })
}

// PostApiV1ProductsImport operation middleware
func (siw *ServerInterfaceWrapper) PostApiV1ProductsImport(c *gin.Context) {
	siw.serve(c, bearer, func() { siw.Handler.PostApiV1ProductsImport(c) })
}

// GetApiV1ProductsId operation middleware
func (siw *ServerInterfaceWrapper) GetApiV1ProductsId(c *gin.Context) {
	siw.withID(c, bearer, siw.Handler.GetApiV1ProductsId)
}

// PutApiV1ProductsId operation middleware
func (siw *ServerInterfaceWrapper) PutApiV1ProductsId(c *gin.Context) {
	siw.withID(c, bearer, siw.Handler.PutApiV1ProductsId)
}

// DeleteApiV1ProductsId operation middleware
func (siw *ServerInterfaceWrapper) DeleteApiV1ProductsId(c *gin.Context) {
	siw.withID(c, bearer, siw.Handler.DeleteApiV1ProductsId)
}

// GetApiV1Dishes operation middleware
func (siw *ServerInterfaceWrapper) GetApiV1Dishes(c *gin.Context) {
	siw.serve(c, bearer, func() { siw.Handler.GetApiV1Dishes(c) })
}

// PostApiV1Dishes operation middleware
func (siw *ServerInterfaceWrapper) PostApiV1Dishes(c *gin.Context) {
	siw.serve(c, bearer, func() { siw.Handler.PostApiV1Dishes(c) })
}

// GetApiV1DishesId operation middleware
func (siw *ServerInterfaceWrapper) GetApiV1DishesId(c *gin.Context) {
	siw.withID(c, bearer, siw.Handler.GetApiV1DishesId)
}

// PutApiV1DishesId operation middleware
func (siw *ServerInterfaceWrapper) PutApiV1DishesId(c *gin.Context) {
	siw.withID(c, bearer, siw.Handler.PutApiV1DishesId)
}

// DeleteApiV1DishesId operation middleware
func (siw *ServerInterfaceWrapper) DeleteApiV1DishesId(c *gin.Context) {
	siw.withID(c, bearer, siw.Handler.DeleteApiV1DishesId)
}

// GetApiV1Entries operation middleware
func (siw *ServerInterfaceWrapper) GetApiV1Entries(c *gin.Context) {
	siw.serve(c, bearer, func() {
		var params GetApiV1EntriesParams
		if !siw.queryParam(c, "date", false, &params.Date) ||
			!siw.queryParam(c, "from", false, &params.From) ||
			!siw.queryParam(c, "to", false, &params.To) {
			return
		}
		siw.Handler.GetApiV1Entries(c, params)
	})
}

// PostApiV1Entries operation middleware
func (siw *ServerInterfaceWrapper) PostApiV1Entries(c *gin.Context) {
	siw.serve(c, bearer, func() { siw.Handler.PostApiV1Entries(c) })
}

// GetApiV1EntriesId operation middleware
func (siw *ServerInterfaceWrapper) GetApiV1EntriesId(c *gin.Context) {
	siw.withID(c, bearer, siw.Handler.GetApiV1EntriesId)
}

// PutApiV1EntriesId operation middleware
func (siw *ServerInterfaceWrapper) PutApiV1EntriesId(c *gin.Context) {
	siw.withID(c, bearer, siw.Handler.PutApiV1EntriesId)
}

// DeleteApiV1EntriesId operation middleware
func (siw *ServerInterfaceWrapper) DeleteApiV1EntriesId(c *gin.Context) {
	siw.withID(c, bearer, siw.Handler.DeleteApiV1EntriesId)
}

// GetApiV1StatsDaily operation middleware
func (siw *ServerInterfaceWrapper) GetApiV1StatsDaily(c *gin.Context) {
	siw.statsParams(c, siw.Handler.GetApiV1StatsDaily)
}

// GetApiV1StatsWeekly operation middleware
func (siw *ServerInterfaceWrapper) GetApiV1StatsWeekly(c *gin.Context) {
	siw.statsParams(c, siw.Handler.GetApiV1StatsWeekly)
}

// GetApiV1StatsWeeklyReport operation middleware
func (siw *ServerInterfaceWrapper) GetApiV1StatsWeeklyReport(c *gin.Context) {
	siw.statsParams(c, siw.Handler.GetApiV1StatsWeeklyReport)
}

// GetApiV1FastingTypes operation middleware
func (siw *ServerInterfaceWrapper) GetApiV1FastingTypes(c *gin.Context) {
	siw.serve(c, bearer, func() { siw.Handler.GetApiV1FastingTypes(c) })
}

// PostApiV1FastingStart operation middleware
func (siw *ServerInterfaceWrapper) PostApiV1FastingStart(c *gin.Context) {
	siw.serve(c, bearer, func() { siw.Handler.PostApiV1FastingStart(c) })
}

// PostApiV1FastingPause operation middleware
func (siw *ServerInterfaceWrapper) PostApiV1FastingPause(c *gin.Context) {
	siw.serve(c, bearer, func() { siw.Handler.PostApiV1FastingPause(c) })
}

// PostApiV1FastingResume operation middleware
func (siw *ServerInterfaceWrapper) PostApiV1FastingResume(c *gin.Context) {
	siw.serve(c, bearer, func() { siw.Handler.PostApiV1FastingResume(c) })
}

// PostApiV1FastingCancel operation middleware
func (siw *ServerInterfaceWrapper) PostApiV1FastingCancel(c *gin.Context) {
	siw.serve(c, bearer, func() { siw.Handler.PostApiV1FastingCancel(c) })
}

// PostApiV1FastingEnd operation middleware
func (siw *ServerInterfaceWrapper) PostApiV1FastingEnd(c *gin.Context) {
	siw.serve(c, bearer, func() { siw.Handler.PostApiV1FastingEnd(c) })
}

// GetApiV1FastingProgress operation middleware
func (siw *ServerInterfaceWrapper) GetApiV1FastingProgress(c *gin.Context) {
	siw.serve(c, bearer, func() { siw.Handler.GetApiV1FastingProgress(c) })
}

// GetApiV1FastingSessions operation middleware
func (siw *ServerInterfaceWrapper) GetApiV1FastingSessions(c *gin.Context) {
	siw.serve(c, bearer, func() {
		var params GetApiV1FastingSessionsParams
		if !siw.queryParam(c, "status", false, &params.Status) ||
			!siw.queryParam(c, "from", false, &params.From) ||
			!siw.queryParam(c, "to", false, &params.To) ||
			!siw.queryParam(c, "limit", false, &params.Limit) {
			return
		}
		siw.Handler.GetApiV1FastingSessions(c, params)
	})
}

// GetApiV1FastingSessionsId operation middleware
func (siw *ServerInterfaceWrapper) GetApiV1FastingSessionsId(c *gin.Context) {
	siw.withID(c, bearer, siw.Handler.GetApiV1FastingSessionsId)
}

// PatchApiV1FastingSessionsId operation middleware
func (siw *ServerInterfaceWrapper) PatchApiV1FastingSessionsId(c *gin.Context) {
	siw.withID(c, bearer, siw.Handler.PatchApiV1FastingSessionsId)
}

// DeleteApiV1FastingSessionsId operation middleware
func (siw *ServerInterfaceWrapper) DeleteApiV1FastingSessionsId(c *gin.Context) {
	siw.withID(c, bearer, siw.Handler.DeleteApiV1FastingSessionsId)
}

// GetApiV1FastingStats operation middleware
func (siw *ServerInterfaceWrapper) GetApiV1FastingStats(c *gin.Context) {
	siw.serve(c, bearer, func() { siw.Handler.GetApiV1FastingStats(c) })
}

// GetApiV1FastingGki operation middleware
func (siw *ServerInterfaceWrapper) GetApiV1FastingGki(c *gin.Context) {
	siw.serve(c, bearer, func() {
		var params GetApiV1FastingGkiParams
		if !siw.queryParam(c, "glucose", true, &params.Glucose) ||
			!siw.queryParam(c, "ketones", true, &params.Ketones) ||
			!siw.queryParam(c, "glucose_unit", false, &params.GlucoseUnit) {
			return
		}
		siw.Handler.GetApiV1FastingGki(c, params)
	})
}

// GetApiV1Goals operation middleware
func (siw *ServerInterfaceWrapper) GetApiV1Goals(c *gin.Context) {
	siw.serve(c, bearer, func() { siw.Handler.GetApiV1Goals(c) })
}

// PostApiV1Goals operation middleware
func (siw *ServerInterfaceWrapper) PostApiV1Goals(c *gin.Context) {
	siw.serve(c, bearer, func() { siw.Handler.PostApiV1Goals(c) })
}

// GetApiV1GoalsId operation middleware
func (siw *ServerInterfaceWrapper) GetApiV1GoalsId(c *gin.Context) {
	siw.withID(c, bearer, siw.Handler.GetApiV1GoalsId)
}

// DeleteApiV1GoalsId operation middleware
func (siw *ServerInterfaceWrapper) DeleteApiV1GoalsId(c *gin.Context) {
	siw.withID(c, bearer, siw.Handler.DeleteApiV1GoalsId)
}

// GetApiV1Profile operation middleware
func (siw *ServerInterfaceWrapper) GetApiV1Profile(c *gin.Context) {
	siw.serve(c, bearer, func() { siw.Handler.GetApiV1Profile(c) })
}

// PutApiV1Profile operation middleware
func (siw *ServerInterfaceWrapper) PutApiV1Profile(c *gin.Context) {
	siw.serve(c, bearer, func() { siw.Handler.PutApiV1Profile(c) })
}

// GetApiV1ProfileTargets operation middleware
func (siw *ServerInterfaceWrapper) GetApiV1ProfileTargets(c *gin.Context) {
	siw.serve(c, bearer, func() { siw.Handler.GetApiV1ProfileTargets(c) })
}

// PostApiV1Tasks operation middleware
func (siw *ServerInterfaceWrapper) PostApiV1Tasks(c *gin.Context) {
	siw.serve(c, admin, func() { siw.Handler.PostApiV1Tasks(c) })
}

// GetApiV1TasksId operation middleware
func (siw *ServerInterfaceWrapper) GetApiV1TasksId(c *gin.Context) {
	siw.withID(c, admin, siw.Handler.GetApiV1TasksId)
}

// GetApiV1AdminBackups operation middleware
func (siw *ServerInterfaceWrapper) GetApiV1AdminBackups(c *gin.Context) {
	siw.serve(c, admin, func() { siw.Handler.GetApiV1AdminBackups(c) })
}

// PostApiV1AdminBackups operation middleware
func (siw *ServerInterfaceWrapper) PostApiV1AdminBackups(c *gin.Context) {
	siw.serve(c, admin, func() { siw.Handler.PostApiV1AdminBackups(c) })
}

// PostApiV1AdminBackupsNameRestore operation middleware
func (siw *ServerInterfaceWrapper) PostApiV1AdminBackupsNameRestore(c *gin.Context) {
	siw.serve(c, admin, func() {
		var name string
		if siw.pathParam(c, "name", &name) {
			siw.Handler.PostApiV1AdminBackupsNameRestore(c, name)
		}
	})
}

// GetApiV1AdminAudit operation middleware
func (siw *ServerInterfaceWrapper) GetApiV1AdminAudit(c *gin.Context) {
	siw.serve(c, admin, func() {
		var params GetApiV1AdminAuditParams
		if siw.queryParam(c, "limit", false, &params.Limit) {
			siw.Handler.GetApiV1AdminAudit(c, params)
		}
	})
}

// GinServerOptions provides options for the Gin server.
type GinServerOptions struct {
	BaseURL      string
	Middlewares  []MiddlewareFunc
	ErrorHandler func(*gin.Context, error, int)
}

// RegisterHandlers creates http.Handler with routing matching OpenAPI spec.
func RegisterHandlers(router gin.IRouter, si ServerInterface) {
	RegisterHandlersWithOptions(router, si, GinServerOptions{})
}

// RegisterHandlersWithOptions creates http.Handler with additional options
func RegisterHandlersWithOptions(router gin.IRouter, si ServerInterface, options GinServerOptions) {
	errorHandler := options.ErrorHandler
	if errorHandler == nil {
		errorHandler = func(c *gin.Context, err error, statusCode int) {
			c.JSON(statusCode, ErrorResponse{
				Code:     "VALIDATION_ERROR",
				Message:  err.Error(),
				Messages: []string{err.Error()},
			})
		}
	}

	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandler:       errorHandler,
	}

	base := options.BaseURL
	router.GET(base+"/health", wrapper.GetHealth)
	router.POST(base+"/api/v1/auth/login", wrapper.PostApiV1AuthLogin)

	router.GET(base+"/api/v1/products", wrapper.GetApiV1Products)
	router.POST(base+"/api/v1/products", wrapper.PostApiV1Products)
	router.POST(base+"/api/v1/products/import", wrapper.PostApiV1ProductsImport)
	router.GET(base+"/api/v1/products/:id", wrapper.GetApiV1ProductsId)
	router.PUT(base+"/api/v1/products/:id", wrapper.PutApiV1ProductsId)
	router.DELETE(base+"/api/v1/products/:id", wrapper.DeleteApiV1ProductsId)

	router.GET(base+"/api/v1/dishes", wrapper.GetApiV1Dishes)
	router.POST(base+"/api/v1/dishes", wrapper.PostApiV1Dishes)
	router.GET(base+"/api/v1/dishes/:id", wrapper.GetApiV1DishesId)
	router.PUT(base+"/api/v1/dishes/:id", wrapper.PutApiV1DishesId)
	router.DELETE(base+"/api/v1/dishes/:id", wrapper.DeleteApiV1DishesId)

	router.GET(base+"/api/v1/entries", wrapper.GetApiV1Entries)
	router.POST(base+"/api/v1/entries", wrapper.PostApiV1Entries)
	router.GET(base+"/api/v1/entries/:id", wrapper.GetApiV1EntriesId)
	router.PUT(base+"/api/v1/entries/:id", wrapper.PutApiV1EntriesId)
	router.DELETE(base+"/api/v1/entries/:id", wrapper.DeleteApiV1EntriesId)

	router.GET(base+"/api/v1/stats/daily", wrapper.GetApiV1StatsDaily)
	router.GET(base+"/api/v1/stats/weekly", wrapper.GetApiV1StatsWeekly)
	router.GET(base+"/api/v1/stats/weekly/report", wrapper.GetApiV1StatsWeeklyReport)

	router.GET(base+"/api/v1/fasting/types", wrapper.GetApiV1FastingTypes)
	router.POST(base+"/api/v1/fasting/start", wrapper.PostApiV1FastingStart)
	router.POST(base+"/api/v1/fasting/pause", wrapper.PostApiV1FastingPause)
	router.POST(base+"/api/v1/fasting/resume", wrapper.PostApiV1FastingResume)
	router.POST(base+"/api/v1/fasting/cancel", wrapper.PostApiV1FastingCancel)
	router.POST(base+"/api/v1/fasting/end", wrapper.PostApiV1FastingEnd)
	router.GET(base+"/api/v1/fasting/progress", wrapper.GetApiV1FastingProgress)
	router.GET(base+"/api/v1/fasting/sessions", wrapper.GetApiV1FastingSessions)
	router.GET(base+"/api/v1/fasting/sessions/:id", wrapper.GetApiV1FastingSessionsId)
	router.PATCH(base+"/api/v1/fasting/sessions/:id", wrapper.PatchApiV1FastingSessionsId)
	router.DELETE(base+"/api/v1/fasting/sessions/:id", wrapper.DeleteApiV1FastingSessionsId)
	router.GET(base+"/api/v1/fasting/stats", wrapper.GetApiV1FastingStats)
	router.GET(base+"/api/v1/fasting/gki", wrapper.GetApiV1FastingGki)

	router.GET(base+"/api/v1/goals", wrapper.GetApiV1Goals)
	router.POST(base+"/api/v1/goals", wrapper.PostApiV1Goals)
	router.GET(base+"/api/v1/goals/:id", wrapper.GetApiV1GoalsId)
	router.DELETE(base+"/api/v1/goals/:id", wrapper.DeleteApiV1GoalsId)

	router.GET(base+"/api/v1/profile", wrapper.GetApiV1Profile)
	router.PUT(base+"/api/v1/profile", wrapper.PutApiV1Profile)
	router.GET(base+"/api/v1/profile/targets", wrapper.GetApiV1ProfileTargets)

	router.POST(base+"/api/v1/tasks", wrapper.PostApiV1Tasks)
	router.GET(base+"/api/v1/tasks/:id", wrapper.GetApiV1TasksId)

	router.GET(base+"/api/v1/admin/backups", wrapper.GetApiV1AdminBackups)
	router.POST(base+"/api/v1/admin/backups", wrapper.PostApiV1AdminBackups)
	router.POST(base+"/api/v1/admin/backups/:name/restore", wrapper.PostApiV1AdminBackupsNameRestore)
	router.GET(base+"/api/v1/admin/audit", wrapper.GetApiV1AdminAudit)
}
