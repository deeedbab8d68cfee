package app

// Transition is the outcome of checking one alert condition.
type Transition int

const (
	TransitionIdle    Transition = iota // Armed and the condition is absent
	TransitionNotify                    // Armed and the condition appeared: send exactly one notification
	TransitionPersist                   // Suppressed and the condition is still present: stay quiet
	TransitionClear                     // Suppressed and the condition is gone: re-arm silently
)

func (t Transition) String() string {
	switch t {
	case TransitionNotify:
		return "notify"
	case TransitionPersist:
		return "persist"
	case TransitionClear:
		return "clear"
	default:
		return "idle"
	}
}

// Step is the de-duplication state machine. suppressed is the current state
// (an alert was already delivered for this condition) and present is this
// cycle's reading.
func Step(suppressed, present bool) Transition {
	switch {
	case present && !suppressed:
		return TransitionNotify
	case present && suppressed:
		return TransitionPersist
	case !present && suppressed:
		return TransitionClear
	default:
		return TransitionIdle
	}
}

// AlertGate keeps the suppression state of each monitored condition for the
// lifetime of one scheduling loop. It is owned by a single goroutine.
type AlertGate struct {
	suppressed map[string]bool
}

func NewAlertGate() *AlertGate {
	return &AlertGate{suppressed: make(map[string]bool)}
}

// Evaluate applies this cycle's reading for key. A TransitionNotify result
// leaves the gate armed until Suppress is called, so a notification that
// fails to go out is retried on the next cycle.
func (g *AlertGate) Evaluate(key string, present bool) Transition {
	t := Step(g.suppressed[key], present)
	if t == TransitionClear {
		delete(g.suppressed, key)
	}
	return t
}

// Suppress records that the notification for key was delivered.
func (g *AlertGate) Suppress(key string) {
	g.suppressed[key] = true
}

// Suppressed reports the current state for key.
func (g *AlertGate) Suppressed(key string) bool {
	return g.suppressed[key]
}
