package main

import (
	"fmt"
	"os"
	"strings"
)

func main() {
	cmd := "dashboard"
	if len(os.Args) >= 2 && !strings.HasPrefix(os.Args[1], "-") {
		cmd = os.Args[1]
	}
	for _, a := range os.Args[1:] {
		if a == "--help" || a == "-h" {
			cmd = "help"
		}
	}

	var err error
	switch cmd {
	case "help":
		showUsage()
		return
	case "dashboard":
		err = runDashboard()
	case "watch":
		err = runWatch()
	case "doctor":
		err = runDoctor()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\nRun 'rfid-console --help' for usage information.\n", cmd)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`rfid-console - operator console for the RFID inventory backend

USAGE:
    rfid-console [COMMAND] [FLAGS]

COMMANDS:
    dashboard   Interactive terminal dashboard (default)
    watch       Log live RFID movements and alerts to stdout
    doctor      Check configuration and backend connectivity
    help        Show this help message

FLAGS:
    -h, --help         Show this help message
    --config PATH      Config file path (default: ./config.yaml)

CONFIGURATION:
    Config file: ./config.yaml, or RFIDCONSOLE_CONFIG
    Environment: RFIDCONSOLE_* variables override config
    Secrets:     "enc:" values are decrypted with RFIDCONSOLE_CONFIG_KEY

EXAMPLES:
    rfid-console                              # Dashboard with config.yaml
    rfid-console --config /etc/rfid.yaml      # Custom config
    RFIDCONSOLE_BACKEND_URL=http://inv:8080 rfid-console watch
    rfid-console doctor                       # Check connectivity`)
}

// configPath resolves the config file from --config, RFIDCONSOLE_CONFIG or
// the working directory, in that order.
func configPath() string {
	return configPathFrom(os.Args[1:], os.Getenv("RFIDCONSOLE_CONFIG"))
}

func configPathFrom(args []string, env string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	if env != "" {
		return env
	}
	return "config.yaml"
}
