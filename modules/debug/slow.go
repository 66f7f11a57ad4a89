package debug

import (
	"context"
	"math"

	"github.com/specialistvlad/boxwire/internal/box"
	"github.com/specialistvlad/boxwire/internal/task"
	"github.com/specialistvlad/boxwire/internal/value"
)

// yieldEvery is the number of iterations between cooperative yields.
const yieldEvery = 1024

// NewSlow builds a box that, given n on "iterations", runs n steps of
// x = (x*123456 + 789012) mod 1500007 starting from 1 and publishes x.
func NewSlow() *box.Box {
	b := box.New(SlowType)
	var iterations *box.InputPlug
	out := b.MustOutput("output")

	compute := func(ctx context.Context, y task.Yield) error {
		n, err := value.AsNumber(iterations.Read())
		if err != nil {
			return err
		}
		res, err := Recurrence(int64(math.Max(0, float64(n))), y)
		if err != nil {
			return err
		}
		return out.Write(value.Number(res))
	}
	iterations = b.MustInput("iterations", compute)
	if err := b.OnEvent(RunEvent, func(ctx context.Context, y task.Yield, _ value.Value) error {
		return compute(ctx, y)
	}); err != nil {
		panic(err)
	}
	return b
}

// Recurrence runs n steps of the slow recurrence, calling y every
// yieldEvery steps. y may be nil.
func Recurrence(n int64, y task.Yield) (int64, error) {
	x := int64(1)
	for i := int64(1); i <= n; i++ {
		x = (x*123456 + 789012) % 1500007
		if y != nil && i%yieldEvery == 0 {
			if _, err := y(nil); err != nil {
				return 0, err
			}
		}
	}
	return x, nil
}
