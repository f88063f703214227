package server

import "github.com/gofiber/fiber/v2"

type GetHealthResponse struct {
	IsServerRunning bool   `json:"isServerRunning"`
	Frames          uint64 `json:"frames"`
	Worlds          int    `json:"worlds"`
}

// GetHealth reports that the server is up and how far the frame loop got.
func GetHealth(provider Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		var worlds int
		provider.Read(func() { worlds = len(provider.Worlds()) })
		return ctx.JSON(GetHealthResponse{
			IsServerRunning: true,
			Frames:          provider.Frames(),
			Worlds:          worlds,
		})
	}
}

// GetLevels lists the levels of the archive.
func GetLevels(provider Provider) func(*fiber.Ctx) error {
	return func(ctx *fiber.Ctx) error {
		names, err := provider.Levels(ctx.UserContext())
		if err != nil {
			return err
		}
		return ctx.JSON(names)
	}
}
