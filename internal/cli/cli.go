package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Command string

const (
	CommandDemo    Command = "demo"
	CommandStatus  Command = "status"
	CommandStart   Command = "start"
	CommandStop    Command = "stop"
	CommandSetLoad Command = "set-load"
	CommandWatch   Command = "watch"
	CommandShell   Command = "shell"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandDemo:    {},
	CommandStatus:  {},
	CommandStart:   {},
	CommandStop:    {},
	CommandSetLoad: {},
	CommandWatch:   {},
	CommandShell:   {},
	CommandDoctor:  {},
	CommandVersion: {},
	CommandHelp:    {},
}

type Parsed struct {
	Command     Command
	ConfigPath  string
	Addr        string
	Interval    time.Duration
	LoadPercent int
	ShowHelp    bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		case "--addr":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--addr requires a host:port value")
			}
			parsed.Addr = args[i]
		case "--interval":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--interval requires a duration")
			}
			d, err := time.ParseDuration(args[i])
			if err != nil {
				return Parsed{}, fmt.Errorf("invalid --interval %q: %w", args[i], err)
			}
			if d <= 0 {
				return Parsed{}, errors.New("--interval must be positive")
			}
			parsed.Interval = d
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp

			// set-load carries one positional argument. The value is
			// forwarded to the engine as-is; range policy lives there.
			if cmd == CommandSetLoad {
				i++
				if i >= len(args) {
					return Parsed{}, errors.New("set-load requires a load percentage")
				}
				percent, err := strconv.Atoi(args[i])
				if err != nil {
					return Parsed{}, fmt.Errorf("invalid load percentage %q", args[i])
				}
				parsed.LoadPercent = percent
			}

			if i != len(args)-1 {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] [--addr HOST:PORT] <command>

Commands:
  demo           Run the scripted demonstration sequence
  status         Query engine state once
  start          Start the generator
  stop           Stop the generator
  set-load PCT   Request a load setpoint percentage
  watch          Poll engine status until interrupted
  shell          Open an interactive command shell
  doctor         Run configuration and connectivity checks
  version        Print version information
  help           Show this help

Flags:
  --config PATH    Config file path (default: $XDG_CONFIG_HOME/genctl/config.jsonc)
  --addr HOST:PORT Override the configured engine address
  --interval DUR   Polling period for watch (e.g. 2s, 500ms)
  -h, --help       Show help
  --version        Show version
`, binaryName)
}
