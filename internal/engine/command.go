package engine

import "strconv"

// Command is one literal control instruction sent to the engine as a single
// socket write. The engine interprets one write as one command; there is no
// delimiter or length prefix.
type Command string

func Status() Command { return "status" }

func Start() Command { return "start" }

func Stop() Command { return "stop" }

// SetLoad builds a load setpoint command. The engine enforces its own
// acceptance policy (range, minimum floor while running) and reports
// rejections in the reply payload, so no validation happens client-side.
func SetLoad(percent int) Command {
	return Command("set_load " + strconv.Itoa(percent))
}

func (c Command) String() string { return string(c) }
