package systems

import (
	"github.com/pthm-cable/flappy/components"
	"github.com/pthm-cable/flappy/config"
)

// Jump starts a new arc from the bird's current height.
func Jump(pos *components.Position, kin *components.Kinematics, p *config.AgentConfig) {
	kin.Velocity = p.JumpVelocity
	kin.Tick = 0
	kin.JumpHeight = pos.Y
}

// Advance moves a bird one tick along its arc and updates its tilt.
// Returns the vertical displacement applied.
func Advance(pos *components.Position, kin *components.Kinematics, p *config.AgentConfig) float64 {
	kin.Tick++
	t := float64(kin.Tick)

	d := kin.Velocity*t + 0.5*p.Gravity*t*t
	if d >= p.MaxDrop {
		d = p.MaxDrop
	}
	if d <= 0 {
		d -= p.RiseNudge
	}
	pos.Y += d

	if d < 0 || pos.Y < kin.JumpHeight+p.TiltBand {
		if kin.Tilt < p.MaxTilt {
			kin.Tilt = p.MaxTilt
		}
	} else if kin.Tilt > p.MinTilt {
		kin.Tilt = max(kin.Tilt-p.TiltVelocity, p.MinTilt)
	}
	return d
}

// diveTilt is the tilt at which wings are held level.
const diveTilt = -80

// Animate advances the flap cycle by one tick. A cycle is 4*ticksPerFrame+1
// ticks long: frames 0, 1 and 2 for ticksPerFrame ticks each, then frame 1
// again for ticksPerFrame+1 ticks. A diving bird holds frame 1.
func Animate(anim *components.Animation, tilt float64, ticksPerFrame int) {
	anim.Count++
	switch {
	case anim.Count < ticksPerFrame:
		anim.Frame = 0
	case anim.Count < ticksPerFrame*2:
		anim.Frame = 1
	case anim.Count < ticksPerFrame*3:
		anim.Frame = 2
	case anim.Count <= ticksPerFrame*4:
		anim.Frame = 1
	default:
		anim.Frame = 0
		anim.Count = 0
	}

	if tilt <= diveTilt {
		anim.Frame = 1
		anim.Count = ticksPerFrame * 2
	}
}
