package wstk

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"

	"deedles.dev/waysmoke/internal/logger"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentSetup bounds how many instances are constructed at
// once when a Supervisor starts.
const maxConcurrentSetup = 4

// Instancer is a running surface as seen by a Supervisor.
type Instancer interface {
	Handler
	Closed() bool
	Close()
}

// Factory creates an instance for an output.
type Factory func(ctx context.Context, out *Output) (Instancer, error)

// Spawn returns a Factory that runs the Surface returned by
// newSurface in an Instance.
func Spawn[M any](env *Env, newSurface func(*Output) (Surface[M], error)) Factory {
	return func(ctx context.Context, out *Output) (Instancer, error) {
		surface, err := newSurface(out)
		if err != nil {
			return nil, fmt.Errorf("create surface: %w", err)
		}
		return NewInstance(ctx, env, surface, out)
	}
}

// Supervisor keeps an instance running on every output.
type Supervisor struct {
	env     *Env
	factory Factory

	outputs   map[uint32]*Output
	instances map[uint32]Instancer
}

// NewSupervisor creates instances for every output that is currently
// known. Failures to create an instance are logged and the output is
// skipped.
func NewSupervisor(ctx context.Context, env *Env, factory Factory) *Supervisor {
	s := Supervisor{
		env:       env,
		factory:   factory,
		outputs:   make(map[uint32]*Output),
		instances: make(map[uint32]Instancer),
	}
	env.WatchOutputs(&s)

	outputs := env.Outputs()
	created := make([]Instancer, len(outputs))

	var eg errgroup.Group
	eg.SetLimit(maxConcurrentSetup)
	for i, out := range outputs {
		eg.Go(func() error {
			inst, err := factory(ctx, out)
			if err != nil {
				logger.Error("create instance", "output", out, "err", err)
				return nil
			}
			created[i] = inst
			return nil
		})
	}
	eg.Wait()

	for i, inst := range created {
		if inst == nil {
			continue
		}
		s.add(outputs[i], inst)
	}

	return &s
}

func (s *Supervisor) add(out *Output, inst Instancer) {
	s.outputs[out.Global] = out
	s.instances[out.Global] = inst
}

func (s *Supervisor) remove(global uint32) {
	inst, ok := s.instances[global]
	if !ok {
		return
	}

	inst.Close()
	delete(s.instances, global)
	delete(s.outputs, global)
}

// Step handles one batch of events. It returns false once no instances
// remain.
func (s *Supervisor) Step(ctx context.Context) (bool, error) {
	err := s.env.Bridge.Step(ctx)
	s.sweep()
	return len(s.instances) > 0, err
}

// sweep removes instances that have stopped.
func (s *Supervisor) sweep() {
	for global, inst := range s.instances {
		if inst.Closed() {
			logger.Debug("instance stopped", "output", s.outputs[global])
			s.remove(global)
		}
	}
}

// Handle handles output hotplugging.
func (s *Supervisor) Handle(ctx context.Context, payload any) error {
	switch ev := payload.(type) {
	case OutputAdded:
		if _, ok := s.instances[ev.Output.Global]; ok || ev.Output.Obsolete {
			return nil
		}

		inst, err := s.factory(ctx, ev.Output)
		if err != nil {
			logger.Error("create instance", "output", ev.Output, "err", err)
			return nil
		}
		s.add(ev.Output, inst)
		return nil

	case OutputRemoved:
		s.remove(ev.Output.Global)
		return nil
	}

	return fmt.Errorf("unexpected supervisor event %T", payload)
}

// Instances returns the outputs that currently have an instance.
func (s *Supervisor) Instances() []*Output {
	outputs := slices.Collect(maps.Values(s.outputs))
	slices.SortFunc(outputs, compareOutputs)
	return outputs
}

// Close closes every instance.
func (s *Supervisor) Close() {
	for global := range s.instances {
		s.remove(global)
	}
}

func compareOutputs(a, b *Output) int {
	return cmp.Compare(a.Global, b.Global)
}
