package server

import (
	"math"

	"github.com/argus-labs/slotworld/pkg/level"
	"github.com/argus-labs/slotworld/pkg/slot"
	"github.com/argus-labs/slotworld/pkg/world"
	"github.com/gofiber/fiber/v2"
	"github.com/rotisserie/eris"
)

type worldSummary struct {
	Index      uint32 `json:"index"`
	Generation uint32 `json:"generation"`
	ID         string `json:"id"`
	Level      string `json:"level"`
	Stage      string `json:"stage"`
	Entities   int    `json:"entities"`
}

func summarize(w *world.Instance) worldSummary {
	h := w.Handle()
	return worldSummary{
		Index:      h.Index,
		Generation: h.Generation,
		ID:         w.ID().String(),
		Level:      w.LevelName(),
		Stage:      string(w.Stage()),
		Entities:   w.LiveEntities(),
	}
}

// handleParam reads the world handle from the :index and :generation route params.
func handleParam(ctx *fiber.Ctx) (world.Handle, error) {
	index, err := ctx.ParamsInt("index")
	if err != nil || index < 0 || index > math.MaxUint32 {
		return world.Handle{}, fiber.NewError(fiber.StatusBadRequest, "invalid world index")
	}
	generation, err := ctx.ParamsInt("generation")
	if err != nil || generation <= 0 || generation > math.MaxUint32 {
		return world.Handle{}, fiber.NewError(fiber.StatusBadRequest, "invalid world generation")
	}
	return world.Handle{Index: uint32(index), Generation: uint32(generation)}, nil //nolint:gosec // checked above
}

// withWorld runs fn on the addressed world between frames.
func withWorld(provider Provider, ctx *fiber.Ctx, fn func(w *world.Instance) error) error {
	h, err := handleParam(ctx)
	if err != nil {
		return err
	}
	found := false
	provider.Read(func() {
		var w *world.Instance
		w, found = provider.World(h)
		if found {
			err = fn(w)
		}
	})
	if !found {
		return fiber.NewError(fiber.StatusNotFound, "no world with handle "+h.String())
	}
	return err
}

// GetWorlds lists every world.
func GetWorlds(provider Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		result := make([]worldSummary, 0)
		provider.Read(func() {
			for _, h := range provider.Worlds() {
				if w, ok := provider.World(h); ok {
					result = append(result, summarize(w))
				}
			}
		})
		return ctx.JSON(result)
	}
}

type PostWorldRequest struct {
	Level string `json:"level"`
}

// PostWorld loads a level into a new world.
func PostWorld(provider Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		req := new(PostWorldRequest)
		if err := ctx.BodyParser(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.Level == "" {
			return fiber.NewError(fiber.StatusBadRequest, "level is required")
		}

		h, err := provider.AddWorld(ctx.UserContext(), req.Level)
		switch {
		case eris.Is(err, level.ErrNotFound):
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		case eris.Is(err, slot.ErrCapacityExhausted):
			return fiber.NewError(fiber.StatusConflict, err.Error())
		case eris.Is(err, level.ErrMalformed), eris.Is(err, world.ErrLoad):
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		case err != nil:
			return err
		}

		var summary worldSummary
		provider.Read(func() {
			if w, ok := provider.World(h); ok {
				summary = summarize(w)
			}
		})
		return ctx.Status(fiber.StatusCreated).JSON(summary)
	}
}

// DeleteWorld destroys a world.
func DeleteWorld(provider Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		h, err := handleParam(ctx)
		if err != nil {
			return err
		}
		if err := provider.RemoveWorld(h); err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return ctx.SendStatus(fiber.StatusNoContent)
	}
}
