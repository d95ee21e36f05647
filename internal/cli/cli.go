package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Mode selects what the controller does after parsing.
type Mode string

const (
	ModeSession Mode = "session"
	ModeDoctor  Mode = "doctor"
	ModeVersion Mode = "version"
	ModeHelp    Mode = "help"
)

// Parsed holds controller arguments. Zero values defer to configuration.
type Parsed struct {
	Mode       Mode
	Generator  string
	Count      int
	Timeout    time.Duration
	ConfigPath string
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Mode: ModeSession}
	generatorSet := false

	value := func(i *int, flag string) (string, error) {
		*i++
		if *i >= len(args) {
			return "", fmt.Errorf("%s requires a value", flag)
		}
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.Mode = ModeHelp
		case "--version":
			parsed.Mode = ModeVersion
		case "--doctor":
			parsed.Mode = ModeDoctor
		case "--config":
			v, err := value(&i, arg)
			if err != nil {
				return Parsed{}, err
			}
			parsed.ConfigPath = v
		case "-g", "--generator-executable":
			v, err := value(&i, arg)
			if err != nil {
				return Parsed{}, err
			}
			if generatorSet {
				return Parsed{}, errors.New("generator specified more than once")
			}
			parsed.Generator = v
			generatorSet = true
		case "-n", "--count":
			v, err := value(&i, arg)
			if err != nil {
				return Parsed{}, err
			}
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return Parsed{}, fmt.Errorf("%s must be a positive integer, got %q", arg, v)
			}
			parsed.Count = n
		case "--timeout":
			v, err := value(&i, arg)
			if err != nil {
				return Parsed{}, err
			}
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				return Parsed{}, fmt.Errorf("--timeout must be a positive duration, got %q", v)
			}
			parsed.Timeout = d
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}
			if generatorSet {
				return Parsed{}, fmt.Errorf("unexpected argument %q", arg)
			}
			parsed.Generator = arg
			generatorSet = true
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [flags] [GENERATOR]

Spawns GENERATOR, greets it, requests random integers, prints them sorted
with their median and mean, then shuts the generator down.

Arguments:
  GENERATOR                       Generator command line (default: generator next to %[1]s, else on PATH)

Flags:
  -g, --generator-executable CMD  Same as GENERATOR
  -n, --count N                   Number of random integers to request (default: 100)
  --timeout DURATION              Wait bound for generator exit after shutdown (default: 3s)
  --config PATH                   Config file path (default: $XDG_CONFIG_HOME/randpipe/config.toml)
  --doctor                        Run configuration and generator checks
  -h, --help                      Show help
  --version                       Show version
`, binaryName)
}

// GeneratorParsed holds generator process arguments.
type GeneratorParsed struct {
	Mode Mode
}

// ParseGenerator accepts only the informational flags; the generator takes
// its commands from stdin.
func ParseGenerator(args []string) (GeneratorParsed, error) {
	parsed := GeneratorParsed{Mode: ModeSession}
	for _, arg := range args {
		switch arg {
		case "-h", "--help":
			parsed.Mode = ModeHelp
		case "--version":
			parsed.Mode = ModeVersion
		default:
			if strings.HasPrefix(arg, "-") {
				return GeneratorParsed{}, fmt.Errorf("unknown flag: %s", arg)
			}
			return GeneratorParsed{}, fmt.Errorf("unexpected argument %q", arg)
		}
	}
	return parsed, nil
}

func GeneratorHelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [flags]

Reads one command per line from stdin and answers on stdout:
  Hi         replies Hi
  GetRandom  replies a random integer in [0, 1000]
  Shutdown   exits without replying
Other lines are ignored. End of input exits.

Flags:
  -h, --help  Show help
  --version   Show version
`, binaryName)
}
