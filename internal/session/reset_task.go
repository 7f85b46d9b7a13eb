package session

import "time"

// resetTask is a cancellable deferred registry reset.
type resetTask struct {
	timer    *time.Timer
	deadline time.Time
}

func scheduleReset(delay time.Duration, fire func(*resetTask)) *resetTask {
	task := &resetTask{deadline: time.Now().Add(delay)}
	task.timer = time.AfterFunc(delay, func() { fire(task) })
	return task
}

// Cancel stops the timer. It reports whether the reset was prevented from firing.
func (t *resetTask) Cancel() bool {
	if t == nil {
		return false
	}
	return t.timer.Stop()
}

// Deadline returns when the reset is due.
func (t *resetTask) Deadline() time.Time {
	return t.deadline
}
