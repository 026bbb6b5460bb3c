package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bookfinder/internal/client"
	"bookfinder/internal/config"
	"bookfinder/internal/httpx"
	"bookfinder/internal/identity"
	"bookfinder/internal/logger"
)

const signInPath = "/auth"

// cli holds the one Session of this process and everything commands share.
type cli struct {
	log logger.Logger

	in     *bufio.Reader
	inFd   int // -1 unless input is an interactive terminal
	out    io.Writer
	errOut io.Writer

	apiURL      string
	sessionFile string

	session     *identity.Session
	gate        identity.Gate
	api         *client.Client
	unsubscribe func()
}

func newCLI(cfg *config.Config, log logger.Logger, in io.Reader, out, errOut io.Writer) *cli {
	inFd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		inFd = int(f.Fd())
	}
	return &cli{
		inFd:    inFd,
		log:     log,
		in:      bufio.NewReader(in),
		out:     out,
		errOut:  errOut,
		apiURL:  cfg.APIURL,
		session: identity.NewSession(),
		gate:    identity.Gate{SignInPath: signInPath},
	}
}

func (c *cli) root() *cobra.Command {
	root := &cobra.Command{
		Use:           "bookfinder",
		Short:         "Search books and find where to read them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.close()
		},
	}
	root.SetIn(c.in)
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	root.PersistentFlags().StringVar(&c.apiURL, "api", c.apiURL, "BookFinder API base URL")
	root.PersistentFlags().StringVar(&c.sessionFile, "session-file", "", "where the signed-in session is kept (default: user config dir)")

	root.AddCommand(
		c.searchCmd(),
		c.showCmd(),
		c.signInCmd(),
		c.signUpCmd(),
		c.signOutCmd(),
		c.whoamiCmd(),
		c.resetPasswordCmd(),
		c.updatePasswordCmd(),
		c.savedCmd(),
		c.profileCmd(),
		c.contactCmd(),
	)

	// Cobra skips PostRun when RunE fails, so errors are reported here.
	return wrapErrors(root, c)
}

// open restores the persisted session and keeps the file in step with it.
func (c *cli) open() error {
	path := c.sessionFile
	if path == "" {
		p, err := identity.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	unsubscribe, err := identity.NewFileStore(path).Mirror(c.session, func(err error) {
		c.log.Warn("failed to persist session", logger.String("path", path), logger.Error(err))
	})
	if err != nil {
		c.log.Warn("ignoring unreadable session file", logger.String("path", path), logger.Error(err))
		unsubscribe = c.session.Subscribe(func(identity.Snapshot) {})
	}
	c.unsubscribe = unsubscribe
	c.api = client.New(c.apiURL, c.session.AccessToken)
	return nil
}

func (c *cli) close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// requireUser runs the gate. It is called by every personalized command.
func (c *cli) requireUser() error {
	return c.gate.Check(c.session)
}

// apiFailure turns a rejected token into an anonymous session.
func (c *cli) apiFailure(err error) error {
	if client.IsUnauthorized(err) {
		c.session.Reset()
		return c.gate.Check(c.session)
	}
	return err
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// prompt reads one line when value is empty.
func (c *cli) prompt(label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprintf(c.errOut, "%s: ", label)
	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptSecret is prompt without echo on a terminal.
func (c *cli) promptSecret(label, value string) (string, error) {
	if value != "" || c.inFd < 0 {
		return c.prompt(label, value)
	}
	fmt.Fprintf(c.errOut, "%s: ", label)
	b, err := term.ReadPassword(c.inFd)
	fmt.Fprintln(c.errOut)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// checkLocal validates req before any request is sent.
func checkLocal(req any) error {
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		return errors.New(httpx.FirstMessage(details))
	}
	return nil
}

func wrapErrors(root *cobra.Command, c *cli) *cobra.Command {
	for _, cmd := range allCommands(root) {
		run := cmd.RunE
		if run == nil {
			continue
		}
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			err := run(cmd, args)
			if err == nil {
				return nil
			}
			c.close()
			var gateErr *identity.SignInRequiredError
			if errors.As(err, &gateErr) {
				fmt.Fprintln(c.errOut, "Please sign in to continue. Run: bookfinder signin")
				return err
			}
			fmt.Fprintln(c.errOut, "Error:", err)
			return err
		}
	}
	return root
}

func allCommands(cmd *cobra.Command) []*cobra.Command {
	out := []*cobra.Command{cmd}
	for _, sub := range cmd.Commands() {
		out = append(out, allCommands(sub)...)
	}
	return out
}
