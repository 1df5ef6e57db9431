package ecs

// System represents a behavior that operates on entities with specific components.
// Exported Query and Singleton fields are bound to the storage when the system is
// registered; unexported fields are left alone and persist between frames.
type System interface {
	Execute(frame *UpdateFrame)
}

// storageBinder is implemented by Query and Singleton.
type storageBinder interface {
	Init(storage *Storage)
}

// queryExecutor is implemented by Query; the scheduler refreshes every bound query
// right before its owning system runs.
type queryExecutor interface {
	Execute()
}
