package bot

// Hooks mirrors dispatch events to an optional external observer, such
// as the web console's dashboard fields. Unset callbacks are no-ops;
// hooks never block and never fail, they only mirror state.
type Hooks struct {
	OnStatus func(message string)
	OnCount  func(handled int)
	OnError  func(message string)
}

func (h Hooks) status(message string) {
	if h.OnStatus != nil {
		h.OnStatus(message)
	}
}

func (h Hooks) count(handled int) {
	if h.OnCount != nil {
		h.OnCount(handled)
	}
}

func (h Hooks) err(message string) {
	if h.OnError != nil {
		h.OnError(message)
	}
}
