package alarm

// Task is a closed set of verification tasks. Dismissing a fired alarm
// requires a photo the classifier matches against the task's label set.
type Task string

const (
	TaskBrushingTeeth Task = "brushing_teeth"
	TaskOpeningLaptop Task = "opening_laptop"
)

// Tasks lists every known task in display order.
func Tasks() []Task {
	return []Task{TaskBrushingTeeth, TaskOpeningLaptop}
}

// Valid reports whether t is one of the known tasks.
func (t Task) Valid() bool {
	switch t {
	case TaskBrushingTeeth, TaskOpeningLaptop:
		return true
	}
	return false
}

// DisplayName returns the human-readable task name.
func (t Task) DisplayName() string {
	switch t {
	case TaskBrushingTeeth:
		return "Brushing Teeth"
	case TaskOpeningLaptop:
		return "Opening Laptop"
	}
	return string(t)
}

// Icon returns an emoji used by the chat surface.
func (t Task) Icon() string {
	switch t {
	case TaskBrushingTeeth:
		return "🪥"
	case TaskOpeningLaptop:
		return "💻"
	}
	return "⏰"
}

// VerificationLabels returns the classifier labels accepted as proof that
// the task was performed. Matching is case-insensitive substring overlap.
func (t Task) VerificationLabels() []string {
	switch t {
	case TaskBrushingTeeth:
		return []string{"toothbrush", "brush", "bathroom"}
	case TaskOpeningLaptop:
		return []string{"laptop", "computer", "notebook computer", "portable computer"}
	}
	return nil
}
