package tale_test

import (
	"context"
	"fmt"
	"time"

	"github.com/facebookgo/clock"

	"github.com/aretw0/tale"
	"github.com/aretw0/tale/pkg/plot"
)

// ExampleRuntime_Tell drives a short story with a mock clock standing in for wall time.
func ExampleRuntime_Tell() {
	mock := clock.NewMock()
	rt := tale.NewRuntime(tale.WithClock(mock))

	story, err := rt.Build(
		func() { fmt.Println("knock knock") },
		tale.Delay(time.Second),
		[]any{"#Switch", "who", map[string]any{
			"lettuce": func(in *plot.Instance) { fmt.Println("lettuce in, it's cold out here") },
			"*":       func() { fmt.Println("nobody there") },
		}},
	)
	if err != nil {
		panic(err)
	}

	t, err := rt.Tell(context.Background(), story, map[string]any{"who": "lettuce"})
	if err != nil {
		panic(err)
	}
	fmt.Println("running:", t.Update())
	mock.Add(time.Second)
	fmt.Println("running:", t.Running())

	// Output:
	// knock knock
	// running: true
	// lettuce in, it's cold out here
	// running: false
}
