package action

import "context"

// Action is a confident classification ready to be acted upon.
type Action struct {
	Label    string
	Distance float64
}

type Dispatcher interface {
	Dispatch(ctx context.Context, action Action) error
}
