package core

import (
	"slices"
	"strings"
)

// NewTask builds a task with the planner defaults.
func NewTask(id, title string) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, ErrEmptyTitle
	}
	return Task{
		ID:            id,
		Title:         title,
		Priority:      PriorityMedium,
		EstimatedTime: "1h",
		Status:        TaskTodo,
	}, nil
}

func (s *State) AddTask(t Task) {
	s.Tasks = append(s.Tasks, t)
}

// ToggleTask flips done to todo and anything else to done.
func (s *State) ToggleTask(id string) (Task, bool) {
	for i := range s.Tasks {
		if s.Tasks[i].ID != id {
			continue
		}
		if s.Tasks[i].Status == TaskDone {
			s.Tasks[i].Status = TaskTodo
		} else {
			s.Tasks[i].Status = TaskDone
		}
		return s.Tasks[i], true
	}
	return Task{}, false
}

func (s *State) RemoveTask(id string) bool {
	n := len(s.Tasks)
	s.Tasks = slices.DeleteFunc(s.Tasks, func(t Task) bool { return t.ID == id })
	return len(s.Tasks) != n
}

// ReplaceTasks installs a reordered task list.
func (s *State) ReplaceTasks(tasks []Task) {
	s.Tasks = slices.Clone(tasks)
}

// PendingTasks returns the tasks that are not done, in order.
func (s State) PendingTasks() []Task {
	var out []Task
	for _, t := range s.Tasks {
		if t.Status != TaskDone {
			out = append(out, t)
		}
	}
	return out
}

// SetSchedule replaces the day plan, ordered by start time.
func (s *State) SetSchedule(blocks []TimeBlock) {
	s.Schedule = slices.Clone(blocks)
	sortBlocks(s.Schedule)
}

// UpdateTimeBlock replaces the block with the same id and re-sorts the plan.
// The block must end after it starts; an unknown id is a no-op.
func (s *State) UpdateTimeBlock(b TimeBlock) (bool, error) {
	if err := b.Validate(); err != nil {
		return false, err
	}
	i := slices.IndexFunc(s.Schedule, func(old TimeBlock) bool { return old.ID == b.ID })
	if i < 0 {
		return false, nil
	}
	s.Schedule[i] = b
	sortBlocks(s.Schedule)
	return true, nil
}

func (s *State) RemoveTimeBlock(id string) bool {
	n := len(s.Schedule)
	s.Schedule = slices.DeleteFunc(s.Schedule, func(b TimeBlock) bool { return b.ID == id })
	return len(s.Schedule) != n
}

func sortBlocks(blocks []TimeBlock) {
	slices.SortStableFunc(blocks, func(a, b TimeBlock) int {
		return strings.Compare(a.StartTime, b.StartTime)
	})
}
