package optim

import (
	"math"
	"slices"
)

// Scheduler adjusts an optimizer's learning rate between epochs.
type Scheduler interface {
	// Step advances the epoch counter and updates the optimizer's LR.
	Step()

	// LastEpoch returns the number of completed Step calls.
	LastEpoch() int

	// GetLR returns the learning rate currently set on the optimizer.
	GetLR() float32

	// Name returns the scheduler name for logging.
	Name() string
}

// MultiStepLR decays the learning rate by gamma each time the epoch
// counter reaches one of the milestones.
//
// A milestone listed twice decays twice. With base LR 0.1,
// milestones [2, 4] and gamma 0.5:
//
//	epoch 0-1: 0.1
//	epoch 2-3: 0.05
//	epoch 4- : 0.025
type MultiStepLR struct {
	optimizer  Optimizer
	baseLR     float32
	milestones []int // sorted
	gamma      float32
	lastEpoch  int
}

// NewMultiStepLR creates a milestone scheduler bound to optimizer. The
// optimizer's current LR becomes the base LR.
func NewMultiStepLR(optimizer Optimizer, milestones []int, gamma float32) *MultiStepLR {
	sorted := slices.Clone(milestones)
	slices.Sort(sorted)
	return &MultiStepLR{
		optimizer:  optimizer,
		baseLR:     optimizer.GetLR(),
		milestones: sorted,
		gamma:      gamma,
	}
}

// Step advances one epoch.
func (s *MultiStepLR) Step() {
	s.lastEpoch++
	hits := 0
	for _, m := range s.milestones {
		if m == s.lastEpoch {
			hits++
		}
	}
	if hits > 0 {
		s.optimizer.SetLR(s.optimizer.GetLR() * float32(math.Pow(float64(s.gamma), float64(hits))))
	}
}

// SetLastEpoch fast-forwards the scheduler when resuming from a
// checkpoint, recomputing the LR from the base LR in closed form.
func (s *MultiStepLR) SetLastEpoch(epoch int) {
	s.lastEpoch = epoch
	passed := 0
	for _, m := range s.milestones {
		if m <= epoch {
			passed++
		}
	}
	s.optimizer.SetLR(s.baseLR * float32(math.Pow(float64(s.gamma), float64(passed))))
}

// LastEpoch returns the number of completed epochs.
func (s *MultiStepLR) LastEpoch() int {
	return s.lastEpoch
}

// GetLR returns the optimizer's current learning rate.
func (s *MultiStepLR) GetLR() float32 {
	return s.optimizer.GetLR()
}

// Milestones returns the sorted milestone list.
func (s *MultiStepLR) Milestones() []int {
	return slices.Clone(s.milestones)
}

// Gamma returns the decay factor.
func (s *MultiStepLR) Gamma() float32 {
	return s.gamma
}

// Name returns "MultiStepLR".
func (s *MultiStepLR) Name() string {
	return "MultiStepLR"
}
