package handler

import "github.com/vcscsvcscs/nutrifast/pkg/api"

// Server implements api.ServerInterface by composing the per-area handlers
type Server struct {
	*HealthHandler
	*AuthHandler
	*ProductHandler
	*DishHandler
	*EntryHandler
	*StatsHandler
	*FastingHandler
	*GoalHandler
	*ProfileHandler
	*AdminHandler
}

var _ api.ServerInterface = (*Server)(nil)
