package logic

// Counter bounds.
const (
	InfectMin = 0
	InfectMax = 10
	SpeedMin  = 1
	SpeedMax  = 4
)

// Counters holds every page counter. Joules and the three CMD counters are
// unbounded; Infect stays within [InfectMin, InfectMax]; Speed is clamped to
// [SpeedMin, SpeedMax] by B1/B2 but B7 forces it to zero.
type Counters struct {
	Joules int
	Cmd1   int
	Cmd2   int
	Cmd3   int
	Infect int
	Speed  int
}

// NewCounters returns the power-on counter values.
func NewCounters() Counters {
	return Counters{Infect: 1, Speed: 1}
}

// Apply runs the rule page defines for button b and reports whether the
// page has such a rule. Buttons without a rule leave the counters untouched.
func (c *Counters) Apply(page Page, b ButtonID) bool {
	switch page {
	case PageJoules:
		return c.applyJoules(b)
	case PageCmd:
		return c.applyCmd(b)
	case PageInfect:
		return c.applyInfect(b)
	case PageSpeed:
		return c.applySpeed(b)
	case PageBattery:
		return false
	}
	return false
}

func (c *Counters) applyJoules(b ButtonID) bool {
	switch b {
	case B1:
		c.Joules++
	case B2:
		c.Joules--
	case B3:
		c.Joules += 2
	case B4:
		c.Joules -= 2
	case B5:
		c.Joules += 3
	case B6:
		c.Joules = 0
	default:
		return false
	}
	return true
}

func (c *Counters) applyCmd(b ButtonID) bool {
	switch b {
	case B1:
		c.Cmd1++
	case B2:
		c.Cmd1--
	case B3:
		c.Cmd2++
	case B4:
		c.Cmd2--
	case B5:
		c.Cmd3++
	case B6:
		c.Cmd3--
	case B7:
		c.Cmd1, c.Cmd2, c.Cmd3 = 0, 0, 0
	default:
		return false
	}
	return true
}

func (c *Counters) applyInfect(b ButtonID) bool {
	switch b {
	case B1:
		c.Infect = min(c.Infect+1, InfectMax)
	case B2:
		c.Infect = max(c.Infect-1, InfectMin)
	case B6:
		c.Infect = 0
	default:
		return false
	}
	return true
}

func (c *Counters) applySpeed(b ButtonID) bool {
	switch b {
	case B1:
		c.Speed = min(c.Speed+1, SpeedMax)
	case B2:
		c.Speed = max(c.Speed-1, SpeedMin)
	case B7:
		// Reset goes below SpeedMin on purpose.
		c.Speed = 0
	default:
		return false
	}
	return true
}
