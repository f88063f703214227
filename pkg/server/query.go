package server

import (
	"github.com/argus-labs/slotworld/pkg/cql"
	"github.com/argus-labs/slotworld/pkg/ecs"
	"github.com/argus-labs/slotworld/pkg/world"
	"github.com/gofiber/fiber/v2"
)

type entityData struct {
	Index      uint32                   `json:"index"`
	Generation uint32                   `json:"generation"`
	Components map[string]ecs.Component `json:"components"`
}

type DebugStateResponse []entityData

func collect(s *ecs.Storage, f ecs.Filter) (DebugStateResponse, error) {
	result := make(DebugStateResponse, 0)
	for _, h := range s.Query(f) {
		components, err := s.ComponentsOf(h)
		if err != nil {
			return nil, err
		}
		result = append(result, entityData{Index: h.Index, Generation: h.Generation, Components: components})
	}
	return result, nil
}

// GetDebugState dumps every entity of a world with its active components.
func GetDebugState(provider Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		var result DebugStateResponse
		err := withWorld(provider, ctx, func(w *world.Instance) error {
			if w.Storage() == nil {
				result = DebugStateResponse{}
				return nil
			}
			var err error
			result, err = collect(w.Storage(), ecs.All())
			return err
		})
		if err != nil {
			return err
		}
		return ctx.JSON(result)
	}
}

type CQLQueryRequest struct {
	CQL string `json:"cql"`
}

type CQLQueryResponse struct {
	Results DebugStateResponse `json:"results"`
}

// PostCQL selects a world's entities with a cql expression.
func PostCQL(provider Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		req := new(CQLQueryRequest)
		if err := ctx.BodyParser(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var result DebugStateResponse
		err := withWorld(provider, ctx, func(w *world.Instance) error {
			if w.Storage() == nil {
				return fiber.NewError(fiber.StatusConflict, "world is not initialized")
			}
			filter, err := cql.ParseFor(w.Storage(), req.CQL)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			result, err = collect(w.Storage(), filter)
			return err
		})
		if err != nil {
			return err
		}
		return ctx.JSON(CQLQueryResponse{Results: result})
	}
}

type SearchRequest struct {
	Find  []string `json:"find"`
	Match string   `json:"match"`
	Where string   `json:"where"`
}

type SearchResponse struct {
	Results []map[string]any `json:"results"`
}

// PostSearch runs a component search with an optional where clause on a world.
func PostSearch(provider Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		req := new(SearchRequest)
		if err := ctx.BodyParser(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var results []map[string]any
		err := withWorld(provider, ctx, func(w *world.Instance) error {
			if w.Storage() == nil {
				return fiber.NewError(fiber.StatusConflict, "world is not initialized")
			}
			var err error
			results, err = w.Storage().Search(ecs.SearchParam{
				Find:  req.Find,
				Match: ecs.SearchMatch(req.Match),
				Where: req.Where,
			})
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return nil
		})
		if err != nil {
			return err
		}
		return ctx.JSON(SearchResponse{Results: results})
	}
}
