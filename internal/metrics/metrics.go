// Package metrics exports run counters to prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consequence_runs_total",
		Help: "Total number of runs started.",
	})

	choicesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consequence_choices_total",
		Help: "Total number of choices that moved a run to another scene.",
	})

	missingScenesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consequence_missing_scenes_total",
			Help: "Total number of choices that targeted a scene the story does not define.",
		},
		[]string{"target"},
	)

	endingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consequence_endings_total",
			Help: "Total number of runs concluded, by ending.",
		},
		[]string{"ending"},
	)
)

// Observer feeds session transitions into the counters.
type Observer struct{}

func (Observer) Started()               { runsTotal.Inc() }
func (Observer) Transition(_, _ string) { choicesTotal.Inc() }
func (Observer) Missing(target string)  { missingScenesTotal.WithLabelValues(target).Inc() }
func (Observer) Ending(id string)       { endingsTotal.WithLabelValues(id).Inc() }
