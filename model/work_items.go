package model

// WorkItem is one individual waiting for evaluation by a pool worker.
type WorkItem struct {
	Individual *Individual
	Slot       int
}

func NewWorkItem(ind *Individual, slot int) *WorkItem {
	return &WorkItem{
		Individual: ind,
		Slot:       slot,
	}
}
