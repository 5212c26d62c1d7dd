package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/blnkfinance/teller"
	"github.com/blnkfinance/teller/internal/apierror"
	"github.com/blnkfinance/teller/internal/notification"
)

// terminal drives a Teller from line-oriented input, one screen at a time.
type terminal struct {
	teller *teller.Teller
	in     *bufio.Scanner
	out    io.Writer
	symbol string
	// ttyFd is the input descriptor when it is a terminal, otherwise -1.
	ttyFd int
}

func newTerminal(t *teller.Teller, in io.Reader, out io.Writer, symbol string) *terminal {
	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &terminal{teller: t, in: bufio.NewScanner(in), out: out, symbol: symbol, ttyFd: fd}
}

func sessionCommands(app *tellerInstance) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "open an interactive teller session",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.openTeller(cmd.Context())
			if err != nil {
				return err
			}
			defer t.Close()

			return newTerminal(t, cmd.InOrStdin(), cmd.OutOrStdout(), app.cnf.Currency.Symbol).Run(cmd.Context())
		},
	}
}

// Run shows the login screen until the user quits or input ends.
func (s *terminal) Run(ctx context.Context) error {
	for {
		s.println("")
		s.println("Welcome to ATM")
		s.println("1. Login")
		s.println("2. New User? Register")
		s.println("3. Quit")

		choice, ok := s.prompt("Choose an option: ")
		if !ok {
			return s.in.Err()
		}

		switch choice {
		case "1":
			if !s.login(ctx) {
				continue
			}
			if !s.mainMenu(ctx) {
				return s.in.Err()
			}
		case "2":
			s.register(ctx)
		case "3", "q", "quit":
			s.println("Goodbye!")
			return nil
		default:
			s.println("Unknown option")
		}
	}
}

func (s *terminal) login(ctx context.Context) bool {
	number, ok := s.prompt("Account Number: ")
	if !ok {
		return false
	}
	pin, ok := s.promptPin("PIN: ")
	if !ok {
		return false
	}
	if _, err := s.teller.Authenticate(ctx, number, pin); err != nil {
		s.fail(err)
		return false
	}
	return true
}

func (s *terminal) register(ctx context.Context) {
	number, ok := s.prompt("Enter a new Account Number: ")
	if !ok {
		return
	}
	if err := s.teller.AccountNumberAvailable(number); err != nil {
		s.fail(err)
		return
	}
	pin, ok := s.promptPin("Set a 4-digit PIN: ")
	if !ok {
		return
	}
	if err := s.teller.Register(ctx, number, pin); err != nil {
		s.fail(err)
		return
	}
	s.println(teller.RegisteredMessage)
}

// mainMenu runs until logout. It returns false when input ends.
func (s *terminal) mainMenu(ctx context.Context) bool {
	defer s.teller.Logout()

	for {
		s.println("")
		s.println("Main Menu")
		s.println("1. Check Balance")
		s.println("2. Deposit Money")
		s.println("3. Withdraw Money")
		s.println("4. Transaction History")
		s.println("5. Logout")

		choice, ok := s.prompt("Choose an option: ")
		if !ok {
			return false
		}

		switch choice {
		case "1":
			balance, err := s.teller.CurrentBalance()
			if err != nil {
				s.fail(err)
				continue
			}
			s.println(teller.BalanceMessage(s.symbol, balance))
		case "2":
			s.moveFunds(ctx, "Enter amount to deposit: ", s.teller.Deposit, teller.DepositedMessage)
		case "3":
			s.moveFunds(ctx, "Enter amount to withdraw: ", s.teller.Withdraw, teller.WithdrawnMessage)
		case "4":
			history, err := s.teller.TransactionHistory()
			if err != nil {
				s.fail(err)
				continue
			}
			s.println(teller.HistoryMessage(history))
		case "5":
			s.println(teller.LoggedOutMessage)
			return true
		default:
			s.println("Unknown option")
		}
	}
}

func (s *terminal) moveFunds(ctx context.Context, label string, apply func(context.Context, int64) (int64, error), message func(string, int64) string) {
	raw, ok := s.prompt(label)
	if !ok {
		return
	}
	amount, err := teller.ParseAmount(raw)
	if err != nil {
		s.fail(err)
		return
	}
	if _, err := apply(ctx, amount); err != nil {
		s.fail(err)
		return
	}
	s.println(message(s.symbol, amount))
}

func (s *terminal) prompt(label string) (string, bool) {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimRight(s.in.Text(), "\r"), true
}

// promptPin reads a PIN without echo when the input is a terminal.
func (s *terminal) promptPin(label string) (string, bool) {
	if s.ttyFd < 0 {
		return s.prompt(label)
	}
	fmt.Fprint(s.out, label)
	pin, err := term.ReadPassword(s.ttyFd)
	fmt.Fprintln(s.out)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(pin)), true
}

func (s *terminal) println(line string) {
	fmt.Fprintln(s.out, line)
}

// fail shows the error to the user. Store failures are also reported.
func (s *terminal) fail(err error) {
	if apierror.Is(err, apierror.ErrStoreUnavailable) || apierror.Is(err, apierror.ErrStoreCorrupt) {
		notification.NotifyError(err)
	}
	s.println("Error: " + apierror.Message(err))
}
