package builtin

import (
	"sort"
	"time"

	"github.com/aretw0/tale/pkg/plot"
)

// Cases returns the task states of a Switch definition, sorted, which is the
// order its children were registered in. Other definitions have none.
func Cases(def *plot.Definition) []string {
	data, ok := def.Data().(*switchData)
	if !ok {
		return nil
	}
	states := make([]string, 0, len(data.tasks))
	for k := range data.tasks {
		states = append(states, k)
	}
	sort.Strings(states)
	return states
}

// Detail returns the parameter of a built-in definition worth showing next to
// its type: the wait of a Delay, the period of a Live, the choice key of a
// Switch. It is empty for everything else.
func Detail(def *plot.Definition) string {
	switch data := def.Data().(type) {
	case time.Duration:
		if def.Kind() == TypeDelay {
			return data.String()
		}
	case *liveData:
		return "every " + data.interval.String()
	case *switchData:
		if data.key != "" {
			return data.key
		}
		return "func"
	}
	return ""
}
