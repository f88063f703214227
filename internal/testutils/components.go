package testutils

// -------------------------------------------------------------------------------------------------
// Components
// -------------------------------------------------------------------------------------------------

type Health struct {
	Value int `json:"value"`
}

func (Health) Name() string { return "Health" }

type Position struct{ X, Y int }

func (Position) Name() string { return "Position" }

type Velocity struct{ X, Y int }

func (Velocity) Name() string { return "Velocity" }

// FakePosition reuses the Position name with a different type.
type FakePosition struct{ Z float64 }

func (FakePosition) Name() string { return "Position" }

type PlayerTag struct{ Tag string }

func (PlayerTag) Name() string { return "PlayerTag" }
