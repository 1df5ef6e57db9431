package ecs_test

import "github.com/plus3/acsim/ecs"

type Plating struct {
	Value int
}

type Mass struct {
	Kilos int
}

type Callsign struct {
	Value string
}

type Boost struct {
	Thrust int
}

type Overheated struct{}

type Ammo int32

func newTestRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Plating](registry)
	ecs.RegisterComponent[Mass](registry)
	ecs.RegisterComponent[Callsign](registry)
	ecs.RegisterComponent[Boost](registry)
	ecs.RegisterComponent[Overheated](registry)
	ecs.RegisterComponent[Ammo](registry)
	return registry
}
