package ecs

// UpdateFrame is handed to every system during a scheduler pass.
type UpdateFrame struct {
	DeltaTime float64
	Frame     uint64
	Commands  *Commands
	Storage   *Storage

	scheduler *Scheduler
}

func newUpdateFrame(dt float64, frame uint64, storage *Storage, scheduler *Scheduler) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Frame:     frame,
		Commands:  newCommands(),
		Storage:   storage,
		scheduler: scheduler,
	}
}

// Exit asks the scheduler to stop once the current pass has been flushed.
func (f *UpdateFrame) Exit() {
	if f.scheduler != nil {
		f.scheduler.exitRequested = true
	}
}
