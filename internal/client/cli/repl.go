package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/geotrack/internal/client/api"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	SignUp(ctx context.Context) error
	Login(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Locate(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the GeoTrack CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on 'a'; remaining tokens are passed as arguments.
// The loop exits on EOF or when the user types "exit" or "quit".
//
//	Not logged in:
//	  - help           : show available commands
//	  - signup         : create an account
//	  - login          : authenticate
//	  - whoami         : ask the server about the current session
//	  - exit | quit    : leave the program
//
//	Logged in:
//	  - help           : show available commands
//	  - whoami         : ask the server about the current session
//	  - locate LAT LON : report the current position
//	  - upload PATH    : upload a JPEG image
//	  - logout         : log out
//	  - exit | quit    : leave the program
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("geo> %s > ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, locate <lat> <lon>, upload <path>, logout, exit")
			} else {
				printlnFn("Available commands: signup, login, whoami, exit")
			}

		case "signup":
			cmdErr = a.SignUp(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "locate":
			cmdErr = a.Locate(ctx, args)

		case "upload":
			cmdErr = a.Upload(ctx, args)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", describe(cmdErr))
		}
	}
}

// describe turns an error into a one-line message for the user.
func describe(err error) string {
	var apiErr *api.Error
	switch {
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return apiErr.Kind
	case errors.Is(err, api.ErrUnavailable):
		return "server unavailable"
	default:
		return err.Error()
	}
}
