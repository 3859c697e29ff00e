package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"campus-sports-cli/api"

	"golang.org/x/term"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func writeJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// remoteError logs the underlying failure and returns the text the user
// should see for it.
func remoteError(err error, fallback string) error {
	logger.Printf("request error=%q", err)
	return errors.New(api.UserMessage(err, fallback))
}

func validateLogin(req api.LoginRequest) error {
	if !emailPattern.MatchString(req.Email) {
		return fmt.Errorf("invalid email address")
	}
	if len(req.Password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	return nil
}

func validateRegistration(req api.RegisterRequest) error {
	switch {
	case len(strings.TrimSpace(req.Username)) < 3:
		return fmt.Errorf("username must be at least 3 characters")
	case !emailPattern.MatchString(req.Email):
		return fmt.Errorf("invalid email address")
	case len(strings.TrimSpace(req.FullName)) < 3:
		return fmt.Errorf("full name must be at least 3 characters")
	case len(strings.TrimSpace(req.Mobile)) < 10:
		return fmt.Errorf("mobile must be at least 10 characters")
	case !api.IsChoice(api.BranchChoices, req.Branch):
		return fmt.Errorf("branch must be one of %s", choiceValues(api.BranchChoices))
	case !api.IsChoice(api.CourseChoices, req.Course):
		return fmt.Errorf("course must be one of %s", choiceValues(api.CourseChoices))
	case len(req.Password) < 6:
		return fmt.Errorf("password must be at least 6 characters")
	case req.Password != req.Password2:
		return fmt.Errorf("passwords don't match")
	}
	return nil
}

func choiceValues(choices []api.Choice) string {
	values := make([]string, 0, len(choices))
	for _, choice := range choices {
		values = append(values, choice.Value)
	}
	return strings.Join(values, ", ")
}

type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter() *prompter {
	return &prompter{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	value, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && value != "") {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func (p *prompter) secret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return p.line(label)
	}
	fmt.Fprintf(p.out, "%s: ", label)
	bytes, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(bytes)), nil
}

// fill prompts for value only when it was not passed as a flag.
func (p *prompter) fill(value *string, label string, secret bool) error {
	if *value != "" {
		return nil
	}
	var (
		got string
		err error
	)
	if secret {
		got, err = p.secret(label)
	} else {
		got, err = p.line(label)
	}
	if err != nil {
		return err
	}
	*value = got
	return nil
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
