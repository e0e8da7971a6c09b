package domain

type TimelineStep struct {
	Stage        Stage
	Index        int
	IsCompleted  bool
	IsCurrent    bool
	HistoryEntry *HistoryEntry
}

// BuildTimeline lays out every stage with its progress flags and the first
// matching history entry. An unknown current status is treated as the first stage.
func BuildTimeline(order Order) []TimelineStep {
	current := NormalizeStatus(string(order.CurrentStatus)).Index()
	if current < 0 {
		current = 0
	}

	steps := make([]TimelineStep, 0, len(stages))
	for i, stage := range stages {
		step := TimelineStep{
			Stage:       stage,
			Index:       i,
			IsCompleted: i <= current,
			IsCurrent:   i == current,
		}
		for j := range order.History {
			if NormalizeStatus(string(order.History[j].Status)) == stage {
				entry := order.History[j]
				step.HistoryEntry = &entry
				break
			}
		}
		steps = append(steps, step)
	}
	return steps
}
