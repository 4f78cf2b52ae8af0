// Package cli implements zcard's command-line subcommands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/zarlcorp/zcard/internal/card"
	"github.com/zarlcorp/zcard/internal/luhn"
	"github.com/zarlcorp/zcard/internal/store"
	"golang.org/x/term"
)

// ErrInvalidNumber is returned by CmdCheck when the number fails the checksum.
var ErrInvalidNumber = errors.New("number fails checksum")

// DataDir returns the default data directory for zcard.
func DataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return d + "/zcard"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".zcard"
	}
	return home + "/.local/share/zcard"
}

// ReadPassword prompts for a password on w and reads it without echo.
func ReadPassword(prompt string, w io.Writer) ([]byte, error) {
	fmt.Fprint(w, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(w)
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	return b, nil
}

// ReadNewPassword prompts for a new password with confirmation.
func ReadNewPassword(w io.Writer) ([]byte, error) {
	pass, err := ReadPassword("master password: ", w)
	if err != nil {
		return nil, err
	}
	confirm, err := ReadPassword("confirm password: ", w)
	if err != nil {
		return nil, err
	}
	if string(pass) != string(confirm) {
		return nil, fmt.Errorf("passwords do not match")
	}
	return pass, nil
}

// OpenStore prompts for the master password on stderr and opens the store.
func OpenStore(dir string) (*store.Store, error) {
	var pass []byte
	var err error
	if store.IsFirstRun(dir) {
		pass, err = ReadNewPassword(os.Stderr)
	} else {
		pass, err = ReadPassword("master password: ", os.Stderr)
	}
	if err != nil {
		return nil, err
	}

	return store.Open(dir, pass)
}

// genOptions are the parsed arguments of the gen subcommand.
type genOptions struct {
	prefix    string
	count     int
	shortYear bool
	json      bool
	save      bool
}

// parseGenArgs reads `<prefix> [--count N] [--short-year] [--json] [--save]`.
func parseGenArgs(args []string) (genOptions, error) {
	opts := genOptions{count: card.DefaultConfig().Count}

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case strings.EqualFold(a, "--json"):
			opts.json = true
		case strings.EqualFold(a, "--save"):
			opts.save = true
		case strings.EqualFold(a, "--short-year"):
			opts.shortYear = true
		case strings.HasPrefix(a, "--count="):
			n, err := strconv.Atoi(strings.TrimPrefix(a, "--count="))
			if err != nil {
				return opts, fmt.Errorf("--count: %w", err)
			}
			opts.count = n
		case a == "--count":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("--count: missing value")
			}
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil {
				return opts, fmt.Errorf("--count: %w", err)
			}
			opts.count = n
		case strings.HasPrefix(a, "--"):
			return opts, fmt.Errorf("unknown flag %q", a)
		default:
			if opts.prefix != "" {
				return opts, fmt.Errorf("unexpected argument %q", a)
			}
			opts.prefix = card.Digits(a)
		}
	}

	if opts.prefix == "" {
		return opts, fmt.Errorf("usage: zcard gen <prefix> [--count N] [--short-year] [--json] [--save]")
	}

	return opts, nil
}

// config turns the parsed flags into a generator config.
func (o genOptions) config() card.Config {
	cfg := card.DefaultConfig()
	cfg.Count = o.count
	if o.shortYear {
		cfg.YearFormat = card.YearShort
	}
	return cfg
}

// CmdGen generates a batch and prints it to w.
func CmdGen(w io.Writer, args []string) error {
	opts, err := parseGenArgs(args)
	if err != nil {
		return err
	}

	cfg := opts.config()
	if err := cfg.Validate(); err != nil {
		return err
	}

	b, err := card.New(cfg).NewBatch(opts.prefix)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	if opts.json {
		if err := printJSON(w, b); err != nil {
			return err
		}
	} else {
		printBatch(w, b)
	}

	if !opts.save {
		return nil
	}

	s, err := OpenStore(DataDir())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.SaveBatch(b); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "saved %s\n", b.ID)
	return nil
}

// CmdCheck reports whether number passes the checksum. For an invalid
// number it also prints the final digit that would make it pass.
func CmdCheck(w io.Writer, number string) error {
	n := card.Digits(number)
	if n == "" {
		return fmt.Errorf("usage: zcard check <number>")
	}

	if luhn.Valid(n) {
		fmt.Fprintf(w, "%s valid\n", n)
		return nil
	}

	if len(n) > 1 {
		d, err := luhn.CheckDigit(n[:len(n)-1])
		if err == nil {
			fmt.Fprintf(w, "%s invalid (check digit should be %c)\n", n, d)
			return ErrInvalidNumber
		}
	}

	fmt.Fprintf(w, "%s invalid\n", n)
	return ErrInvalidNumber
}

// CmdList lists all saved batches.
func CmdList(w io.Writer, args []string) error {
	s, err := OpenStore(DataDir())
	if err != nil {
		return err
	}
	defer s.Close()

	bs, err := s.ListBatches()
	if err != nil {
		return err
	}

	if hasFlag(args, "--json") {
		return printJSON(w, bs)
	}

	printBatchList(w, bs)
	return nil
}

// CmdForget deletes a saved batch by ID.
func CmdForget(w io.Writer, id string) error {
	s, err := OpenStore(DataDir())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.DeleteBatch(id); err != nil {
		return err
	}
	fmt.Fprintf(w, "deleted %s\n", id)
	return nil
}

func printBatch(w io.Writer, b card.Batch) {
	fmt.Fprintf(w, "  id:      %s\n", b.ID)
	fmt.Fprintf(w, "  prefix:  %s\n", b.Prefix)
	fmt.Fprintf(w, "  amount:  %d\n\n", len(b.Cards))
	for _, line := range b.Lines() {
		fmt.Fprintf(w, "  %s\n", line)
	}
	fmt.Fprintf(w, "\n  time:    %.2f seconds\n", b.Elapsed.Seconds())
}

func printBatchList(w io.Writer, bs []card.Batch) {
	if len(bs) == 0 {
		fmt.Fprintln(w, "no saved batches")
		return
	}

	for _, b := range bs {
		fmt.Fprintf(w, "  %-10s %-18s %4d  %s\n",
			b.ID,
			b.Prefix,
			len(b.Cards),
			b.CreatedAt.Format("2006-01-02"),
		)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if strings.EqualFold(a, flag) {
			return true
		}
	}
	return false
}
